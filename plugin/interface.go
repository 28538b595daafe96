package plugin

import (
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"
)

// Handshake is shared by ola and every provider plugin binary.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "OLA_PLUGIN",
	MagicCookieValue: "model-provider",
}

// PluginMap is the map of plugins we can dispense.
var PluginMap = map[string]goplugin.Plugin{
	"provider": &ProviderPlugin{},
}

type Message struct {
	Role    string
	Content string
}

type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// ModelProvider is implemented by plugin binaries.
type ModelProvider interface {
	// Configure passes the provider's additional settings, plus api_key and model.
	Configure(settings map[string]string) error

	Complete(req CompletionRequest) (*CompletionResponse, error)

	ListModels() ([]string, error)
}

// ProviderPlugin is the go-plugin glue for ModelProvider over net/rpc.
type ProviderPlugin struct {
	Impl ModelProvider
}

func (p *ProviderPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &RPCServer{Impl: p.Impl}, nil
}

func (*ProviderPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// RPCServer runs inside the plugin process.
type RPCServer struct {
	Impl ModelProvider
}

func (s *RPCServer) Configure(settings map[string]string, _ *struct{}) error {
	return s.Impl.Configure(settings)
}

func (s *RPCServer) Complete(req CompletionRequest, resp *CompletionResponse) error {
	out, err := s.Impl.Complete(req)
	if err != nil {
		return err
	}
	*resp = *out
	return nil
}

func (s *RPCServer) ListModels(_ interface{}, resp *[]string) error {
	models, err := s.Impl.ListModels()
	if err != nil {
		return err
	}
	*resp = models
	return nil
}

// RPCClient is the host-side stub for a plugin's ModelProvider.
type RPCClient struct {
	client *rpc.Client
}

func (c *RPCClient) Configure(settings map[string]string) error {
	return c.client.Call("Plugin.Configure", settings, &struct{}{})
}

func (c *RPCClient) Complete(req CompletionRequest) (*CompletionResponse, error) {
	var resp CompletionResponse
	if err := c.client.Call("Plugin.Complete", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RPCClient) ListModels() ([]string, error) {
	var models []string
	if err := c.client.Call("Plugin.ListModels", new(interface{}), &models); err != nil {
		return nil, err
	}
	return models, nil
}

// Serve runs impl as a plugin. It is called from a plugin binary's main.
func Serve(impl ModelProvider) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			"provider": &ProviderPlugin{Impl: impl},
		},
	})
}
