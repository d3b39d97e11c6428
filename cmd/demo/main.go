// Command demo wires the orchestration core end to end: it registers
// whichever providers have credentials configured, assigns the RFI
// analyst agent a primary and fallback model, and runs an RFI triage
// workflow through analysis, review and notification.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sitewise/taskcore"
	"github.com/sitewise/taskcore/provider/anthropic"
	"github.com/sitewise/taskcore/provider/google"
	"github.com/sitewise/taskcore/provider/local"
	"github.com/sitewise/taskcore/provider/openai"
	"github.com/sitewise/taskcore/registry"
	"github.com/sitewise/taskcore/router"
	"github.com/sitewise/taskcore/workflow"
)

func main() {
	cfg := LoadConfig()
	log := newLogger(cfg.LogLevel)
	ctx := context.Background()

	reg := registry.New()
	modelIDs, err := wireProviders(ctx, reg, cfg)
	if err != nil {
		log.Error("provider setup failed", "error", err)
		os.Exit(1)
	}
	if len(modelIDs) == 0 {
		fmt.Println("No providers configured. Set OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY or OLLAMA_ENDPOINT.")
		os.Exit(1)
	}

	assignment := taskcore.Assignment{AgentID: "rfi-analyst", PrimaryID: modelIDs[0]}
	if len(modelIDs) > 1 {
		assignment.FallbackID = modelIDs[1]
	}
	if err := reg.AssignAgent(assignment); err != nil {
		log.Error("agent assignment failed", "error", err)
		os.Exit(1)
	}

	for id, healthy := range reg.CheckProviders(ctx) {
		log.Info("provider health", "provider", id, "healthy", healthy)
	}

	rt := router.New(reg, router.WithLogger(log))
	manager := workflow.NewManager(workflow.NewMemoryStore(),
		workflow.WithAgentInvoker(workflow.RouterInvoker{Router: rt}),
		workflow.WithNotificationSink(workflow.NotifyFunc(func(ctx context.Context, n workflow.Notification) error {
			fmt.Printf("notify %s: %s\n", n.Recipient, n.Message)
			return nil
		})),
		workflow.WithManagerLogger(log),
	)

	if err := manager.RegisterDefinition(workflow.Definition{
		ID:   "rfi-triage",
		Name: "RFI triage",
		Steps: []workflow.Step{
			{ID: "analyze", Kind: workflow.StepAgentTask, AgentID: "rfi-analyst", PromptKey: "question", OutputKey: "analysis"},
			{ID: "review", Kind: workflow.StepHumanTask, Assignee: "site-engineer"},
			{ID: "notify", Kind: workflow.StepNotification, Recipient: "submitter", Message: "Your RFI has been answered"},
		},
	}); err != nil {
		log.Error("definition rejected", "error", err)
		os.Exit(1)
	}

	question := "The structural drawings call for #5 rebar at 12\" o.c. but the spec says #4 at 8\" o.c. Which governs?"
	if len(os.Args) > 1 {
		question = os.Args[1]
	}

	in, err := manager.Start(ctx, "rfi-triage", map[string]any{"question": question})
	if err != nil {
		log.Error("workflow start failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\ninstance %s is %s at step %s\n", in.ID, in.Status, in.CurrentStep)
	if analysis, ok := in.Data["analysis"].(string); ok {
		fmt.Printf("\nanalysis:\n%s\n\n", analysis)
	}

	if in.Status == workflow.StatusWaiting {
		in, err = manager.CompleteTask(ctx, in.ID, in.CurrentStep, workflow.TaskOutcome{
			Data: map[string]any{"reviewed_by": "site-engineer"},
		})
		if err != nil {
			log.Error("task completion failed", "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("final status: %s\n\nhistory:\n", in.Status)
	for _, e := range in.History {
		fmt.Printf("  %s  %-20s %-10s %s\n", e.At.Format("15:04:05"), e.Kind, e.StepID, e.Detail)
	}
}

// wireProviders registers an adapter and a generation model for every
// backend with credentials, returning the model ids in wiring order.
func wireProviders(ctx context.Context, reg *registry.Registry, cfg *Config) ([]string, error) {
	var modelIDs []string

	register := func(p taskcore.Provider, adapter taskcore.Adapter, backendID string) error {
		if err := reg.RegisterProvider(p, adapter); err != nil {
			return err
		}
		modelID := p.ID + "-generate"
		if err := reg.RegisterModel(taskcore.Model{
			ID:           modelID,
			ProviderID:   p.ID,
			BackendID:    backendID,
			Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate},
			Defaults:     taskcore.Params{Temperature: taskcore.Temp(0.2), MaxTokens: 1024},
			Active:       true,
			Default:      len(modelIDs) == 0,
		}); err != nil {
			return err
		}
		modelIDs = append(modelIDs, modelID)
		return nil
	}

	if cfg.OpenAIKey != "" {
		p := taskcore.Provider{ID: "openai", Kind: taskcore.ProviderCloud, Timeout: cfg.Timeout, Active: true}
		if err := register(p, openai.FromProvider(p, cfg.OpenAIKey), "gpt-4o-mini"); err != nil {
			return nil, err
		}
	}
	if cfg.AnthropicKey != "" {
		p := taskcore.Provider{ID: "anthropic", Kind: taskcore.ProviderCloud, Timeout: cfg.Timeout, Active: true}
		if err := register(p, anthropic.FromProvider(p, cfg.AnthropicKey), "claude-3-5-haiku-latest"); err != nil {
			return nil, err
		}
	}
	if cfg.GoogleKey != "" {
		p := taskcore.Provider{ID: "google", Kind: taskcore.ProviderCloud, Timeout: cfg.Timeout, Active: true}
		adapter, err := google.FromProvider(ctx, p, cfg.GoogleKey)
		if err != nil {
			return nil, err
		}
		if err := register(p, adapter, "gemini-2.0-flash"); err != nil {
			return nil, err
		}
	}
	if cfg.OllamaEndpoint != "" {
		p := taskcore.Provider{ID: "ollama", Kind: taskcore.ProviderLocal, Endpoint: cfg.OllamaEndpoint, Timeout: cfg.Timeout, Active: true}
		if err := register(p, local.FromProvider(p), cfg.OllamaModel); err != nil {
			return nil, err
		}
	}

	return modelIDs, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
