package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

// Entry is one loaded processor file
type Entry struct {
	Path   string
	Config *model.ProcessorConfig
}

// Registry holds the processor configurations available for deployment
type Registry struct {
	entries map[ids.ProcessorID]Entry
}

// NewRegistry builds a registry from configurations that are already loaded
func NewRegistry(configs ...*model.ProcessorConfig) (*Registry, error) {
	r := &Registry{entries: make(map[ids.ProcessorID]Entry, len(configs))}
	for _, c := range configs {
		if err := r.add(Entry{Config: c}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadDir loads every *.toml file in dir. Any invalid file fails the whole
// load. Validation warnings are logged.
func LoadDir(dir string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("processors directory: %w", err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list processor files: %w", err)
	}
	sort.Strings(paths)

	r := &Registry{entries: make(map[ids.ProcessorID]Entry, len(paths))}
	for _, path := range paths {
		config, result, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, w := range result.Warnings {
			logger.Warn("processor configuration warning",
				zap.String("file", path),
				zap.String("field", w.Field),
				zap.String("message", w.Message))
		}
		if err := r.add(Entry{Path: path, Config: config}); err != nil {
			return nil, err
		}
		logger.Debug("loaded processor", zap.String("id", config.ID.String()), zap.String("file", path))
	}
	return r, nil
}

func (r *Registry) add(e Entry) error {
	if existing, ok := r.entries[e.Config.ID]; ok {
		return fmt.Errorf("duplicate processor id '%s' in %s and %s", e.Config.ID, existing.Path, e.Path)
	}
	r.entries[e.Config.ID] = e
	return nil
}

// Get returns the configuration of a processor
func (r *Registry) Get(id ids.ProcessorID) (*model.ProcessorConfig, bool) {
	e, ok := r.entries[id]
	return e.Config, ok
}

// Entry returns the loaded file of a processor
func (r *Registry) Entry(id ids.ProcessorID) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// List returns all configurations sorted by processor id
func (r *Registry) List() []*model.ProcessorConfig {
	configs := make([]*model.ProcessorConfig, 0, len(r.entries))
	for _, id := range ids.SortedKeys(r.entries) {
		configs = append(configs, r.entries[id].Config)
	}
	return configs
}

// Len returns the number of loaded processors
func (r *Registry) Len() int {
	return len(r.entries)
}
