package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/taskcore"
)

// stubAdapter is a configuration-only adapter for catalog tests.
type stubAdapter struct {
	healthy bool
}

func (s *stubAdapter) Generate(ctx context.Context, model, prompt string, params taskcore.Params) (*taskcore.GenerateResult, error) {
	return &taskcore.GenerateResult{Text: "stub", Model: model}, nil
}

func (s *stubAdapter) Embed(ctx context.Context, model string, texts []string) (*taskcore.EmbedResult, error) {
	return &taskcore.EmbedResult{Vectors: make([][]float64, len(texts)), Model: model}, nil
}

func (s *stubAdapter) HealthCheck(ctx context.Context) bool { return s.healthy }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	require.NoError(t, r.RegisterProvider(taskcore.Provider{ID: "cloud", Kind: taskcore.ProviderCloud, Active: true}, &stubAdapter{healthy: true}))
	require.NoError(t, r.RegisterProvider(taskcore.Provider{ID: "site", Kind: taskcore.ProviderLocal, Active: true}, &stubAdapter{healthy: false}))
	return r
}

func TestRegisterProvider(t *testing.T) {
	r := New()

	t.Run("requires id", func(t *testing.T) {
		err := r.RegisterProvider(taskcore.Provider{}, &stubAdapter{})
		assert.True(t, taskcore.IsValidation(err))
	})

	t.Run("requires adapter", func(t *testing.T) {
		err := r.RegisterProvider(taskcore.Provider{ID: "p"}, nil)
		assert.True(t, taskcore.IsValidation(err))
	})

	t.Run("resolve returns snapshot", func(t *testing.T) {
		require.NoError(t, r.RegisterProvider(taskcore.Provider{ID: "p", Kind: taskcore.ProviderCloud}, &stubAdapter{}))
		rec, adapter, err := r.ResolveProvider("p")
		require.NoError(t, err)
		assert.Equal(t, "p", rec.ID)
		assert.NotNil(t, adapter)
	})

	t.Run("resolve miss is typed", func(t *testing.T) {
		_, _, err := r.ResolveProvider("missing")
		assert.True(t, taskcore.IsNotFoundKind(err, taskcore.KindProvider))
	})
}

func TestRegisterModel(t *testing.T) {
	r := newTestRegistry(t)

	t.Run("rejects unknown provider", func(t *testing.T) {
		err := r.RegisterModel(taskcore.Model{ID: "m", ProviderID: "ghost", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}})
		assert.True(t, taskcore.IsNotFoundKind(err, taskcore.KindProvider))
	})

	t.Run("rejects empty capabilities", func(t *testing.T) {
		err := r.RegisterModel(taskcore.Model{ID: "m", ProviderID: "cloud"})
		assert.True(t, taskcore.IsValidation(err))
	})

	t.Run("rejects second default for same capability", func(t *testing.T) {
		require.NoError(t, r.RegisterModel(taskcore.Model{
			ID: "m1", ProviderID: "cloud",
			Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate},
			Active:       true, Default: true,
		}))
		err := r.RegisterModel(taskcore.Model{
			ID: "m2", ProviderID: "cloud",
			Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate},
			Active:       true, Default: true,
		})
		assert.True(t, taskcore.IsValidation(err))
	})

	t.Run("allows defaults for disjoint capabilities", func(t *testing.T) {
		err := r.RegisterModel(taskcore.Model{
			ID: "m3", ProviderID: "cloud",
			Capabilities: []taskcore.Capability{taskcore.CapabilityEmbed},
			Active:       true, Default: true,
		})
		assert.NoError(t, err)
	})

	t.Run("re-registering the same default is an update", func(t *testing.T) {
		err := r.RegisterModel(taskcore.Model{
			ID: "m1", ProviderID: "cloud",
			Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate},
			Defaults:     taskcore.Params{MaxTokens: 2000},
			Active:       true, Default: true,
		})
		require.NoError(t, err)
		m, err := r.ResolveModel("m1")
		require.NoError(t, err)
		assert.Equal(t, 2000, m.Defaults.MaxTokens)
	})

	t.Run("resolve returns a copy", func(t *testing.T) {
		m, err := r.ResolveModel("m1")
		require.NoError(t, err)
		m.Defaults.MaxTokens = 1
		again, err := r.ResolveModel("m1")
		require.NoError(t, err)
		assert.Equal(t, 2000, again.Defaults.MaxTokens)
	})
}

func TestListModels(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "gen", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: true}))
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "emb", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityEmbed}, Active: true}))
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "off", ProviderID: "site", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: false}))

	assert.Len(t, r.ListModels(ListFilter{}), 3)
	assert.Len(t, r.ListModels(ListFilter{ActiveOnly: true}), 2)
	assert.Len(t, r.ListModels(ListFilter{ProviderID: "site"}), 1)
	assert.Len(t, r.ListModels(ListFilter{Capability: taskcore.CapabilityEmbed}), 1)
	assert.Empty(t, r.ListModels(ListFilter{ProviderID: "site", ActiveOnly: true}))
}

func TestSetDefault(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "a", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: true, Default: true}))
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "b", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: true}))

	require.NoError(t, r.SetDefault("b"))

	def, ok := r.DefaultModel(taskcore.CapabilityGenerate)
	require.True(t, ok)
	assert.Equal(t, "b", def.ID)

	a, err := r.ResolveModel("a")
	require.NoError(t, err)
	assert.False(t, a.Default)

	assert.True(t, taskcore.IsNotFoundKind(r.SetDefault("ghost"), taskcore.KindModel))
}

func TestAssignAgent(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "primary", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: true}))
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "backup", ProviderID: "site", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: true}))
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "vectors", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityEmbed}, Active: true}))

	t.Run("valid assignment", func(t *testing.T) {
		err := r.AssignAgent(taskcore.Assignment{AgentID: "rfi-analyst", PrimaryID: "primary", FallbackID: "backup"})
		require.NoError(t, err)

		a, err := r.ResolveAssignment("rfi-analyst", taskcore.CapabilityGenerate)
		require.NoError(t, err)
		assert.Equal(t, "primary", a.PrimaryID)
		assert.Equal(t, "backup", a.FallbackID)
	})

	t.Run("rejects fallback equal to primary", func(t *testing.T) {
		err := r.AssignAgent(taskcore.Assignment{AgentID: "x", PrimaryID: "primary", FallbackID: "primary"})
		assert.True(t, taskcore.IsValidation(err))
	})

	t.Run("rejects unknown primary", func(t *testing.T) {
		err := r.AssignAgent(taskcore.Assignment{AgentID: "x", PrimaryID: "ghost"})
		assert.True(t, taskcore.IsNotFoundKind(err, taskcore.KindModel))
	})

	t.Run("rejects capability-disjoint fallback", func(t *testing.T) {
		err := r.AssignAgent(taskcore.Assignment{AgentID: "x", PrimaryID: "primary", FallbackID: "vectors"})
		assert.True(t, taskcore.IsValidation(err))
	})

	t.Run("removing a referenced model is rejected", func(t *testing.T) {
		err := r.RemoveModel("backup")
		assert.True(t, taskcore.IsValidation(err))
	})

	t.Run("unassign frees the model", func(t *testing.T) {
		r.UnassignAgent("rfi-analyst")
		assert.NoError(t, r.RemoveModel("backup"))
	})
}

func TestResolveAssignmentDefaults(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "def-gen", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: true, Default: true}))

	t.Run("synthesizes default-only assignment", func(t *testing.T) {
		a, err := r.ResolveAssignment("unassigned-agent", taskcore.CapabilityGenerate)
		require.NoError(t, err)
		assert.Equal(t, "def-gen", a.PrimaryID)
		assert.False(t, a.HasFallback())
	})

	t.Run("fails when no default covers the capability", func(t *testing.T) {
		_, err := r.ResolveAssignment("unassigned-agent", taskcore.CapabilityEmbed)
		assert.True(t, taskcore.IsNotFoundKind(err, taskcore.KindAssignment))
	})
}

func TestRemoveProvider(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "m", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}}))

	assert.True(t, taskcore.IsValidation(r.RemoveProvider("cloud")))
	require.NoError(t, r.RemoveModel("m"))
	assert.NoError(t, r.RemoveProvider("cloud"))
	assert.True(t, taskcore.IsNotFoundKind(r.RemoveProvider("cloud"), taskcore.KindProvider))
}

func TestCheckProviders(t *testing.T) {
	r := newTestRegistry(t)
	health := r.CheckProviders(context.Background())
	assert.Equal(t, map[string]bool{"cloud": true, "site": false}, health)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterModel(taskcore.Model{ID: "m", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: true, Default: true}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = r.ResolveModel("m")
				_, _ = r.ResolveAssignment("agent", taskcore.CapabilityGenerate)
				_ = r.ListModels(ListFilter{ActiveOnly: true})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.RegisterModel(taskcore.Model{ID: "m", ProviderID: "cloud", Capabilities: []taskcore.Capability{taskcore.CapabilityGenerate}, Active: true, Default: true})
			}
		}()
	}
	wg.Wait()
}
