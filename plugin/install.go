package plugin

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Installer fetches provider plugins from GitHub-style release pages.
type Installer struct {
	BaseURL string // defaults to https://github.com
	Client  *http.Client
	GOOS    string
	GOARCH  string
}

func (in *Installer) baseURL() string {
	if in.BaseURL != "" {
		return strings.TrimRight(in.BaseURL, "/")
	}
	return "https://github.com"
}

func (in *Installer) httpClient() *http.Client {
	if in.Client != nil {
		return in.Client
	}
	return http.DefaultClient
}

// ArchiveName is the release asset expected for a platform.
func ArchiveName(repo, goos, goarch string) string {
	return fmt.Sprintf("%s_%s_%s.tar.gz", repo, goos, goarch)
}

// Install downloads <repo>_<os>_<arch>.tar.gz from the release tagged version,
// checks it against checksums.txt and writes the "plugin" binary into destDir.
func (in *Installer) Install(ctx context.Context, source, version, destDir string) error {
	owner, repo, err := ParseSource(source)
	if err != nil {
		return err
	}
	goos, goarch := in.GOOS, in.GOARCH
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}

	archive := ArchiveName(repo, goos, goarch)
	release := fmt.Sprintf("%s/%s/%s/releases/download/%s", in.baseURL(), owner, repo, version)

	sums, err := in.fetch(ctx, release+"/checksums.txt")
	if err != nil {
		return fmt.Errorf("failed to fetch checksums: %w", err)
	}
	want, err := lookupChecksum(sums, archive)
	if err != nil {
		return err
	}

	data, err := in.fetch(ctx, release+"/"+archive)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", archive, err)
	}
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != want {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", archive, got, want)
	}

	if err := extractBinary(data, destDir); err != nil {
		return fmt.Errorf("failed to extract %s: %w", archive, err)
	}
	return nil
}

func (in *Installer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := in.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// ParseSource extracts owner/repo from "github.com/owner/repo" or "owner/repo".
func ParseSource(source string) (owner, repo string, err error) {
	s := strings.TrimPrefix(source, "https://")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, "/")
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid plugin source: %s", source)
	}
	return parts[0], parts[1], nil
}

// lookupChecksum reads "hash  filename" lines.
func lookupChecksum(sums []byte, filename string) (string, error) {
	for _, line := range strings.Split(string(sums), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && strings.TrimPrefix(fields[1], "*") == filename {
			return strings.ToLower(fields[0]), nil
		}
	}
	return "", fmt.Errorf("checksum not found for %s", filename)
}

func extractBinary(data []byte, destDir string) error {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("plugin binary not found in archive")
		}
		if err != nil {
			return err
		}
		if header.Typeflag != tar.TypeReg || filepath.Base(header.Name) != "plugin" {
			continue
		}

		if err := os.MkdirAll(destDir, 0755); err != nil {
			return err
		}
		out, err := os.OpenFile(filepath.Join(destDir, "plugin"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}
}
