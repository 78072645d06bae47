package service

import (
	"fmt"
	"sort"

	"github.com/dyne/textsvc/internal/config"
)

// PluginSymbol is the exported variable every plugin must define.
const PluginSymbol = "Services"

// PluginFunc is the shape of a plugin-provided transformation.
type PluginFunc func(input string) string

// PluginService adapts a plugin function to TextService.
type PluginService struct {
	name string
	fn   PluginFunc
}

func NewPluginService(name string, fn PluginFunc) *PluginService {
	return &PluginService{name: name, fn: fn}
}

func (s *PluginService) Name() string { return s.name + " (plugin)" }

func (s *PluginService) Execute(input string) string {
	if s.fn == nil {
		return input
	}
	return s.fn(input)
}

// registerPluginSymbol accepts either the map itself or a pointer to it, which
// is what plugin.Lookup returns for package-level variables.
func registerPluginSymbol(r *Registry, path string, sym any) error {
	var fns map[string]func(string) string
	switch v := sym.(type) {
	case map[string]func(string) string:
		fns = v
	case *map[string]func(string) string:
		if v != nil {
			fns = *v
		}
	default:
		return fmt.Errorf("plugin %s: %s has incompatible type %T", path, PluginSymbol, sym)
	}
	// Map order is random; sort so listings are the same on every run.
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn := fns[name]
		if fn == nil {
			continue
		}
		svc := NewPluginService(name, fn)
		if err := r.Register(name, svc); err != nil {
			return fmt.Errorf("plugin %s: %w", path, err)
		}
		RegisterType(name, func(*config.ServiceConfig, RandSource) (TextService, error) {
			return svc, nil
		})
	}
	return nil
}
