// Package taskcore is the orchestration core for routing model operations
// to interchangeable AI providers and for driving collaborative workflows
// to completion.
//
// The root package defines the shared vocabulary: provider and model
// records, the adapter capability interface, invocation parameters, and
// the error taxonomy.
//
// # Core Interfaces
//
// An [Adapter] exposes a fixed capability surface per backend:
//
//   - Generate: produce text from a prompt
//   - Embed: compute embedding vectors for texts
//   - HealthCheck: probe backend reachability
//
// Adapters for concrete backends live under provider/ (openai, anthropic,
// google, local). They are selected at configuration time through a
// registry and invoked through a router, which resolves a logical agent
// identity to a primary model and an optional fallback.
//
// # Workflows
//
// The workflow package drives multi-step processes (agent tasks, human
// tasks, approvals, conditional branches, notifications, integration
// calls). Automated steps call back into the router; human-facing steps
// park the instance in a waiting state until an explicit task completion.
//
// # Basic Usage
//
//	reg := registry.New()
//	reg.RegisterProvider(taskcore.Provider{ID: "openai", Kind: taskcore.ProviderCloud, Active: true},
//	    openaiprovider.New(os.Getenv("OPENAI_API_KEY")))
//	err := reg.RegisterModel(taskcore.Model{
//	    ID:           "gpt-4o",
//	    ProviderID:   "openai",
//	    BackendID:    "gpt-4o",
//	    Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate},
//	    Active:       true,
//	})
//
//	rt := router.New(reg)
//	res, err := rt.Generate(ctx, "rfi-analyst", "Summarize this RFI...", taskcore.Params{})
package taskcore
