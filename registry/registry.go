// Package registry holds the catalog of configured providers, models and
// agent assignments, and resolves them for the router.
//
// The registry is safe for concurrent use: reads take a shared lock and
// return value copies, so in-flight routing calls never observe a
// configuration edit mid-way. Writes validate the catalog invariants
// before committing.
package registry

import (
	"context"
	"sync"

	"github.com/sitewise/taskcore"
)

type providerEntry struct {
	record  taskcore.Provider
	adapter taskcore.Adapter
}

// Registry is the catalog of providers, models and assignments.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]providerEntry
	models      map[string]taskcore.Model
	assignments map[string]taskcore.Assignment
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		providers:   make(map[string]providerEntry),
		models:      make(map[string]taskcore.Model),
		assignments: make(map[string]taskcore.Assignment),
	}
}

// RegisterProvider adds or replaces a provider record together with the
// adapter that reaches its backend.
func (r *Registry) RegisterProvider(p taskcore.Provider, adapter taskcore.Adapter) error {
	if p.ID == "" {
		return &taskcore.ValidationError{Entity: "provider", ID: p.ID, Reason: "id is required"}
	}
	if adapter == nil {
		return &taskcore.ValidationError{Entity: "provider", ID: p.ID, Reason: "adapter is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = providerEntry{record: p, adapter: adapter}
	return nil
}

// RemoveProvider deletes a provider. It fails if any model still
// references it.
func (r *Registry) RemoveProvider(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return &taskcore.NotFoundError{Kind: taskcore.KindProvider, ID: id}
	}
	for _, m := range r.models {
		if m.ProviderID == id {
			return &taskcore.ValidationError{Entity: "provider", ID: id, Reason: "model " + m.ID + " still references it"}
		}
	}
	delete(r.providers, id)
	return nil
}

// ResolveProvider returns a snapshot of the provider record and its
// adapter. Fails with a provider NotFoundError.
func (r *Registry) ResolveProvider(id string) (taskcore.Provider, taskcore.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.providers[id]
	if !ok {
		return taskcore.Provider{}, nil, &taskcore.NotFoundError{Kind: taskcore.KindProvider, ID: id}
	}
	return entry.record, entry.adapter, nil
}

// ListProviders returns snapshots of all provider records.
func (r *Registry) ListProviders() []taskcore.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]taskcore.Provider, 0, len(r.providers))
	for _, entry := range r.providers {
		out = append(out, entry.record)
	}
	return out
}

// RegisterModel adds or replaces a model after validating catalog
// invariants: the provider must exist, at least one capability must be
// declared, and marking the model default must not create a second
// default for any capability it declares.
func (r *Registry) RegisterModel(m taskcore.Model) error {
	if m.ID == "" {
		return &taskcore.ValidationError{Entity: "model", ID: m.ID, Reason: "id is required"}
	}
	if len(m.Capabilities) == 0 {
		return &taskcore.ValidationError{Entity: "model", ID: m.ID, Reason: "at least one capability is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[m.ProviderID]; !ok {
		return &taskcore.NotFoundError{Kind: taskcore.KindProvider, ID: m.ProviderID}
	}
	if m.Default {
		for _, existing := range r.models {
			if existing.ID == m.ID || !existing.Default {
				continue
			}
			for _, c := range m.Capabilities {
				if existing.HasCapability(c) {
					return &taskcore.ValidationError{
						Entity: "model",
						ID:     m.ID,
						Reason: "model " + existing.ID + " is already the default for " + c.String(),
					}
				}
			}
		}
	}

	r.models[m.ID] = m.Clone()
	return nil
}

// RemoveModel deletes a model. It fails if any assignment still
// references it.
func (r *Registry) RemoveModel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.models[id]; !ok {
		return &taskcore.NotFoundError{Kind: taskcore.KindModel, ID: id}
	}
	for _, a := range r.assignments {
		if a.PrimaryID == id || a.FallbackID == id {
			return &taskcore.ValidationError{Entity: "model", ID: id, Reason: "agent " + a.AgentID + " still references it"}
		}
	}
	delete(r.models, id)
	return nil
}

// ResolveModel returns a copy of the model. Fails with a model
// NotFoundError.
func (r *Registry) ResolveModel(id string) (taskcore.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[id]
	if !ok {
		return taskcore.Model{}, &taskcore.NotFoundError{Kind: taskcore.KindModel, ID: id}
	}
	return m.Clone(), nil
}

// ListFilter narrows a ListModels call. Zero values match everything.
type ListFilter struct {
	ProviderID string
	Capability taskcore.Capability
	ActiveOnly bool
}

// ListModels returns copies of the models matching the filter.
func (r *Registry) ListModels(filter ListFilter) []taskcore.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]taskcore.Model, 0, len(r.models))
	for _, m := range r.models {
		if filter.ProviderID != "" && m.ProviderID != filter.ProviderID {
			continue
		}
		if filter.Capability != "" && !m.HasCapability(filter.Capability) {
			continue
		}
		if filter.ActiveOnly && !m.Active {
			continue
		}
		out = append(out, m.Clone())
	}
	return out
}

// SetDefault makes the model the registry-wide default for every
// capability it declares, clearing the flag from any model that shares
// one of those capabilities.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.models[id]
	if !ok {
		return &taskcore.NotFoundError{Kind: taskcore.KindModel, ID: id}
	}

	for mid, m := range r.models {
		if mid == id || !m.Default {
			continue
		}
		for _, c := range target.Capabilities {
			if m.HasCapability(c) {
				m.Default = false
				r.models[mid] = m
				break
			}
		}
	}

	target.Default = true
	r.models[id] = target
	return nil
}

// DefaultModel returns a copy of the default model for the capability,
// or false if none is configured.
func (r *Registry) DefaultModel(c taskcore.Capability) (taskcore.Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultModelLocked(c)
}

func (r *Registry) defaultModelLocked(c taskcore.Capability) (taskcore.Model, bool) {
	for _, m := range r.models {
		if m.Default && m.Active && m.HasCapability(c) {
			return m.Clone(), true
		}
	}
	return taskcore.Model{}, false
}

// AssignAgent binds an agent identity to a primary model and an
// optional fallback. The fallback must differ from the primary and
// share at least one capability with it.
func (r *Registry) AssignAgent(a taskcore.Assignment) error {
	if a.AgentID == "" {
		return &taskcore.ValidationError{Entity: "assignment", ID: a.AgentID, Reason: "agent id is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	primary, ok := r.models[a.PrimaryID]
	if !ok {
		return &taskcore.NotFoundError{Kind: taskcore.KindModel, ID: a.PrimaryID}
	}
	if a.FallbackID != "" {
		if a.FallbackID == a.PrimaryID {
			return &taskcore.ValidationError{Entity: "assignment", ID: a.AgentID, Reason: "fallback equals primary"}
		}
		fallback, ok := r.models[a.FallbackID]
		if !ok {
			return &taskcore.NotFoundError{Kind: taskcore.KindModel, ID: a.FallbackID}
		}
		shared := false
		for _, c := range primary.Capabilities {
			if fallback.HasCapability(c) {
				shared = true
				break
			}
		}
		if !shared {
			return &taskcore.ValidationError{Entity: "assignment", ID: a.AgentID, Reason: "fallback shares no capability with primary"}
		}
	}

	r.assignments[a.AgentID] = a
	return nil
}

// UnassignAgent removes an agent binding. It is a no-op if none exists.
func (r *Registry) UnassignAgent(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, agentID)
}

// ResolveAssignment returns the assignment for the agent, copied by
// value. An assignment only applies to capabilities its primary model
// declares; otherwise, and when the agent has no assignment at all, a
// synthesized default-only assignment is returned if a default model
// covers the capability. Fails with an assignment NotFoundError.
func (r *Registry) ResolveAssignment(agentID string, c taskcore.Capability) (taskcore.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.assignments[agentID]; ok {
		if primary, ok := r.models[a.PrimaryID]; ok && primary.HasCapability(c) {
			return a, nil
		}
	}
	if def, ok := r.defaultModelLocked(c); ok {
		return taskcore.Assignment{AgentID: agentID, PrimaryID: def.ID}, nil
	}
	return taskcore.Assignment{}, &taskcore.NotFoundError{Kind: taskcore.KindAssignment, ID: agentID}
}

// ListAssignments returns copies of all agent assignments.
func (r *Registry) ListAssignments() []taskcore.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]taskcore.Assignment, 0, len(r.assignments))
	for _, a := range r.assignments {
		out = append(out, a)
	}
	return out
}

// CheckProviders probes every registered provider's backend and returns
// reachability keyed by provider ID. Probes run concurrently and outside
// the registry lock.
func (r *Registry) CheckProviders(ctx context.Context) map[string]bool {
	r.mu.RLock()
	entries := make(map[string]taskcore.Adapter, len(r.providers))
	for id, entry := range r.providers {
		entries[id] = entry.adapter
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	var mu sync.Mutex
	result := make(map[string]bool, len(entries))

	for id, adapter := range entries {
		wg.Add(1)
		go func(id string, adapter taskcore.Adapter) {
			defer wg.Done()
			healthy := adapter.HealthCheck(ctx)
			mu.Lock()
			result[id] = healthy
			mu.Unlock()
		}(id, adapter)
	}
	wg.Wait()
	return result
}
