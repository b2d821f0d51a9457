package platform

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

type deployment struct {
	descriptor  descriptor.Descriptor
	provisioned bool
}

// MemoryAPI is an in-process API that keeps deployments in a map. New
// deployments are provisioned immediately unless Provision is false.
type MemoryAPI struct {
	mu          sync.RWMutex
	deployments map[string]*deployment

	// Err, when set, is returned by every call
	Err error
	// Provision tells whether created deployments report as provisioned
	Provision bool
}

// NewMemoryAPI creates an empty API that provisions deployments immediately
func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{deployments: make(map[string]*deployment), Provision: true}
}

func key(kind model.ProcessorKind, name string) string {
	return string(kind) + "/" + name
}

// Create implements API
func (m *MemoryAPI) Create(_ context.Context, name string, d descriptor.Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.deployments[key(d.Kind(), name)] = &deployment{descriptor: d, provisioned: m.Provision}
	return nil
}

// Delete implements API
func (m *MemoryAPI) Delete(_ context.Context, kind model.ProcessorKind, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	k := key(kind, name)
	if _, ok := m.deployments[k]; !ok {
		return NotFound(name)
	}
	delete(m.deployments, k)
	return nil
}

// AllocationStatus implements API
func (m *MemoryAPI) AllocationStatus(_ context.Context, kind model.ProcessorKind, name string) (*AllocationStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	d, ok := m.deployments[key(kind, name)]
	if !ok {
		return nil, NotFound(name)
	}
	return &AllocationStatus{Provisioned: d.provisioned}, nil
}

// Descriptor returns the descriptor of a deployment
func (m *MemoryAPI) Descriptor(kind model.ProcessorKind, name string) (descriptor.Descriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.deployments[key(kind, name)]
	if !ok {
		return nil, false
	}
	return d.descriptor, true
}

// Names returns the names of all deployments of a kind in sorted order
func (m *MemoryAPI) Names(kind model.ProcessorKind) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := string(kind) + "/"
	var names []string
	for k := range m.deployments {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
