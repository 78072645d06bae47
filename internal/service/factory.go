package service

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dyne/textsvc/internal/config"
)

// Factory builds a service from its configuration entry.
type Factory func(cfg *config.ServiceConfig, src RandSource) (TextService, error)

var (
	typesMu sync.RWMutex
	types   = map[string]Factory{}
)

// RegisterType makes an extra service type available to Build. Plugins use
// it so configuration can refer to their services.
func RegisterType(name string, factory Factory) {
	if name == "" || factory == nil {
		return
	}
	typesMu.Lock()
	types[normalizeType(name)] = factory
	typesMu.Unlock()
}

func lookupType(name string) (Factory, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	f, ok := types[normalizeType(name)]
	return f, ok
}

func normalizeType(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}

func Build(cfg *config.ServiceConfig, src RandSource) (TextService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidService)
	}
	if factory, ok := lookupType(cfg.Type); ok {
		return factory(cfg, src)
	}
	switch normalizeType(cfg.Type) {
	case "greeting":
		return &Greeting{}, nil
	case "reverse":
		return &Reverse{}, nil
	case "repeat":
		times := 2
		if cfg.Times != nil {
			times = *cfg.Times
		} else if v, ok := cfg.Param("times"); ok {
			times = v
		}
		return NewRepeat(times), nil
	case "uppercase", "upper":
		return &Uppercase{}, nil
	case "lowercase", "lower":
		return &Lowercase{}, nil
	case "count":
		return &Count{}, nil
	case "removespaces":
		return &RemoveSpaces{}, nil
	case "capitalize":
		return &Capitalize{}, nil
	case "cipher", "caesar":
		shift := DefaultShift
		if cfg.Shift != nil {
			shift = *cfg.Shift
		} else if v, ok := cfg.Param("shift"); ok {
			shift = v
		}
		return NewCipher(shift), nil
	case "shuffle":
		if cfg.Seed != nil {
			return NewShuffle(SeededSource(*cfg.Seed)), nil
		}
		return NewShuffle(src), nil
	default:
		return nil, fmt.Errorf("unknown service type: %s", cfg.Type)
	}
}

// Labeled overrides the display label of a wrapped service.
type Labeled struct {
	TextService
	label string
}

func (s *Labeled) Name() string { return s.label }

// NewCatalogue assembles the stock catalogue plus every service declared in
// cfg. Plugins are loaded separately so that callers control when .so files
// are opened.
func NewCatalogue(cfg *config.Config, src RandSource) (*Registry, error) {
	r := NewRegistry()
	if err := RegisterDefaults(r, src); err != nil {
		return nil, err
	}
	if err := RegisterConfigured(r, cfg, src); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterConfigured builds every service declared in cfg and registers it
// under its key. Plugin types must be loaded first to be usable here.
func RegisterConfigured(r *Registry, cfg *config.Config, src RandSource) error {
	if cfg == nil {
		return nil
	}
	for i := range cfg.Services {
		sc := &cfg.Services[i]
		svc, err := Build(sc, src)
		if err != nil {
			return fmt.Errorf("build service %s: %w", sc.Key, err)
		}
		if sc.Label != "" {
			svc = &Labeled{TextService: svc, label: sc.Label}
		}
		if err := r.Register(sc.Key, svc); err != nil {
			return fmt.Errorf("register service %s: %w", sc.Key, err)
		}
	}
	return nil
}
