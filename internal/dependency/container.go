// Package dependency wires core blinx services using go.uber.org/dig.
package dependency

import (
	"net/http"

	"go.uber.org/dig"

	"github.com/blinxlabs/blinx/internal/agent"
	"github.com/blinxlabs/blinx/internal/assistant"
	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/persona"
	"github.com/blinxlabs/blinx/internal/schema"
	"github.com/blinxlabs/blinx/internal/tools"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg       *config.Config
	persona   persona.Persona
	registry  *tools.Registry
	service   schema.AssistantService
	responder *agent.Responder
}

func (c *Container) Config() *config.Config           { return c.cfg }
func (c *Container) Persona() persona.Persona         { return c.persona }
func (c *Container) Registry() *tools.Registry        { return c.registry }
func (c *Container) Service() schema.AssistantService { return c.service }
func (c *Container) Responder() *agent.Responder      { return c.responder }

// AssistantSpec describes the assistant to create: the persona plus every
// registered tool.
func (c *Container) AssistantSpec() schema.AssistantSpec {
	return schema.AssistantSpec{
		Name:         c.persona.Name,
		Model:        c.persona.Model,
		Instructions: c.persona.Instructions,
		Tools:        c.registry.Definitions(),
	}
}

// ToolHTTPClient is the client tools use for outbound calls. It is a named
// type so dig can tell it apart from the assistant service's client.
type ToolHTTPClient struct{ *http.Client }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		newPersona,
		newToolHTTPClient,
		newBroadcaster,
		newRegistry,
		newAssistantService,
		newPoller,
		newDispatcher,
		newResponder,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		p persona.Persona,
		reg *tools.Registry,
		svc schema.AssistantService,
		responder *agent.Responder,
	) {
		result = &Container{
			cfg:       cfg,
			persona:   p,
			registry:  reg,
			service:   svc,
			responder: responder,
		}
	})
	return result, err
}

func newPersona(cfg *config.Config) (persona.Persona, error) {
	p, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		return persona.Persona{}, err
	}
	if cfg.OpenAI.Model != "" {
		p.Model = cfg.OpenAI.Model
	}
	return p, nil
}

func newToolHTTPClient(cfg *config.Config) ToolHTTPClient {
	return ToolHTTPClient{&http.Client{Timeout: cfg.Tools.Timeout}}
}

func newBroadcaster(cfg *config.Config, client ToolHTTPClient) tools.Broadcaster {
	return tools.NewRPCBroadcaster(cfg.Trade.RPCEndpoint, client.Client)
}

func newRegistry(cfg *config.Config, client ToolHTTPClient, broadcaster tools.Broadcaster) *tools.Registry {
	return tools.NewRegistryBuilder().
		WithTool(tools.NewTrendingTokensTool(cfg.Bitquery, client.Client)).
		WithTool(tools.NewTopHoldersTool(cfg.Bitquery, client.Client)).
		WithTool(tools.NewMarketcapTool(cfg.DexScreener, client.Client)).
		WithTool(tools.NewFirstTopBuyerTool(cfg.Bitquery, client.Client)).
		WithTool(tools.NewTradeTool(cfg.Trade, client.Client, broadcaster)).
		Build()
}

func newAssistantService(cfg *config.Config) schema.AssistantService {
	return assistant.NewOpenAIService(cfg.OpenAI, &http.Client{Timeout: cfg.OpenAI.Timeout})
}

func newPoller(cfg *config.Config, svc schema.AssistantService) *agent.Poller {
	return agent.NewPoller(svc, agent.NewPollPolicy(cfg.Poll))
}

func newDispatcher(cfg *config.Config, reg *tools.Registry) *agent.Dispatcher {
	return agent.NewDispatcher(reg, cfg.Tools.Concurrency)
}

func newResponder(cfg *config.Config, svc schema.AssistantService, poller *agent.Poller, dispatcher *agent.Dispatcher) *agent.Responder {
	return agent.NewResponder(svc, poller, dispatcher, cfg.Tools.MaxIterations)
}
