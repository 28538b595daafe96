package plugin_test

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/llm"
	"ola/plugin"
)

type upperProvider struct {
	settings map[string]string
	fail     bool
}

func (u *upperProvider) Configure(settings map[string]string) error {
	u.settings = settings
	return nil
}

func (u *upperProvider) Complete(req plugin.CompletionRequest) (*plugin.CompletionResponse, error) {
	if u.fail {
		return nil, errors.New("model unavailable")
	}
	last := req.Messages[len(req.Messages)-1]
	return &plugin.CompletionResponse{
		Content:      req.Model + ":" + strings.ToUpper(last.Content),
		InputTokens:  len(req.Messages),
		OutputTokens: 1,
	}, nil
}

func (u *upperProvider) ListModels() ([]string, error) {
	return []string{"upper-1", "upper-2"}, nil
}

// dial wires an RPCClient to an RPCServer over an in-memory connection.
func dial(impl plugin.ModelProvider) plugin.ModelProvider {
	serverConn, clientConn := net.Pipe()

	server := rpc.NewServer()
	Expect(server.RegisterName("Plugin", &plugin.RPCServer{Impl: impl})).To(Succeed())
	go server.ServeConn(serverConn)

	client := rpc.NewClient(clientConn)
	DeferCleanup(client.Close)

	raw, err := (&plugin.ProviderPlugin{}).Client(nil, client)
	Expect(err).NotTo(HaveOccurred())
	return raw.(plugin.ModelProvider)
}

var _ = Describe("net/rpc transport", func() {
	It("carries configure, complete and list calls", func() {
		impl := &upperProvider{}
		remote := dial(impl)

		Expect(remote.Configure(map[string]string{"api_key": "k"})).To(Succeed())
		Expect(impl.settings).To(HaveKeyWithValue("api_key", "k"))

		resp, err := remote.Complete(plugin.CompletionRequest{
			Model:    "m",
			Messages: []plugin.Message{{Role: "user", Content: "hi"}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Content).To(Equal("m:HI"))

		models, err := remote.ListModels()
		Expect(err).NotTo(HaveOccurred())
		Expect(models).To(Equal([]string{"upper-1", "upper-2"}))
	})

	It("returns plugin errors to the host", func() {
		remote := dial(&upperProvider{fail: true})
		_, err := remote.Complete(plugin.CompletionRequest{Messages: []plugin.Message{{Content: "x"}}})
		Expect(err).To(MatchError(ContainSubstring("model unavailable")))
	})
})

var _ = Describe("Provider", func() {
	It("serves an llm session", func() {
		p := plugin.NewProvider(dial(&upperProvider{}))
		s := llm.NewSession(p, "m", "system text")

		var chunks []string
		resp, err := s.SendStream(context.Background(), "hello", func(c llm.StreamChunk) {
			if c.Content != "" {
				chunks = append(chunks, c.Content)
			}
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(Equal([]string{"m:HELLO"}))
		Expect(resp.Usage.InputTokens).To(Equal(2))
	})

	It("reports failures through the stream", func() {
		p := plugin.NewProvider(&upperProvider{fail: true})
		_, err := llm.NewSession(p, "m").SendStream(context.Background(), "x", nil)
		Expect(err).To(MatchError("model unavailable"))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := plugin.NewProvider(&upperProvider{}).ListModels(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})
