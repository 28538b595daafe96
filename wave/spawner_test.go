package wave_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/wave"
)

var _ = Describe("ExecSpawner", func() {
	var (
		stdout, stderr *bytes.Buffer
		spawner        *wave.ExecSpawner
	)

	BeforeEach(func() {
		if _, err := os.Stat("/bin/sh"); err != nil {
			Skip("no /bin/sh available")
		}
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		spawner = &wave.ExecSpawner{
			Path:   "/bin/sh",
			Env:    []string{"PATH=/usr/bin:/bin"},
			Stdout: stdout,
			Stderr: stderr,
		}
	})

	It("hands each child its wave index through the environment", func() {
		inv := wave.Invocation{Args: []string{"-c", `echo "wave $OLA_RECURSION_WAVE/$OLA_RECURSION_TOTAL"`}}
		ctrl := &wave.Controller{Spawner: spawner, Status: stderr}

		_, err := ctrl.Run(context.Background(), inv, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("wave 1/3\nwave 2/3\nwave 3/3\n"))
	})

	It("leaves the parent environment alone", func() {
		inv := wave.Invocation{Args: []string{"-c", "true"}}
		_, err := spawner.Spawn(context.Background(), 1, 1, inv)
		Expect(err).NotTo(HaveOccurred())
		_, set := os.LookupEnv(wave.EnvWave)
		Expect(set).To(BeFalse())
	})

	It("replays captured stdin to every child", func() {
		inv := wave.Invocation{
			Args:  []string{"-c", "cat"},
			Stdin: []byte("piped\n"),
		}
		ctrl := &wave.Controller{Spawner: spawner, Status: stderr}

		_, err := ctrl.Run(context.Background(), inv, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("piped\npiped\n"))
	})

	It("passes through the failing child's exit code", func() {
		inv := wave.Invocation{Args: []string{"-c", `echo "ran $OLA_RECURSION_WAVE"; [ "$OLA_RECURSION_WAVE" = 2 ] && exit 2; exit 0`}}
		ctrl := &wave.Controller{Spawner: spawner, Status: stderr}

		_, err := ctrl.Run(context.Background(), inv, 5)
		var failed *wave.ChildFailedError
		Expect(errors.As(err, &failed)).To(BeTrue())
		Expect(failed.ExitCode()).To(Equal(2))
		Expect(stdout.String()).To(Equal("ran 1\nran 2\n"))
		Expect(stderr.String()).To(ContainSubstring("wave 2 of 5"))
		Expect(stderr.String()).NotTo(ContainSubstring("wave 3 of 5"))
	})

	It("reports a missing binary as a spawn failure", func() {
		spawner.Path = filepath.Join(GinkgoT().TempDir(), "missing-ola")
		ctrl := &wave.Controller{Spawner: spawner, Status: stderr}

		_, err := ctrl.Run(context.Background(), wave.Invocation{}, 2)
		var spawnErr *wave.SpawnError
		Expect(errors.As(err, &spawnErr)).To(BeTrue())
		Expect(spawnErr.Wave).To(Equal(1))
	})
})
