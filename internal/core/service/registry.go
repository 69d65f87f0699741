package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type PluginRegistry struct {
	mu      sync.RWMutex
	plugins map[domain.ResourceKind]ports.ResourcePlugin
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		plugins: make(map[domain.ResourceKind]ports.ResourcePlugin),
	}
}

func (r *PluginRegistry) Register(plugin ports.ResourcePlugin) error {
	if plugin == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil resource plugin")
	}
	kind := plugin.Kind()
	if kind == "" {
		return errors.New(errors.CodeInternal, "resource plugin kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[kind]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("resource plugin for kind '%s' already registered", kind))
	}
	r.plugins[kind] = plugin
	return nil
}

func (r *PluginRegistry) Get(kind domain.ResourceKind) (ports.ResourcePlugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, exists := r.plugins[kind]
	if !exists {
		return nil, errors.NewUserFacing(errors.CodePluginNotFound,
			fmt.Sprintf("no plugin registered for resource kind '%s'", kind),
			"Check the 'kind' field of the resource block against the supported resource kinds.")
	}
	return plugin, nil
}

func (r *PluginRegistry) Kinds() []domain.ResourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.ResourceKind, 0, len(r.plugins))
	for kind := range r.plugins {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
