package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownService is matched by every *UnknownServiceError.
	ErrUnknownService = errors.New("unknown service")

	ErrDuplicateService = errors.New("service already registered")
	ErrInvalidService   = errors.New("invalid service")
)

// UnknownServiceError reports a key that is not in the catalogue.
type UnknownServiceError struct {
	Key string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service: %q", e.Key)
}

func (e *UnknownServiceError) Is(target error) bool {
	return target == ErrUnknownService
}

// Entry pairs a catalogue key with the service's display label.
type Entry struct {
	Key  string
	Name string
}

// Registry is the service catalogue and dispatcher. Lookups only take a read
// lock, so a registry filled at start-up can be shared by any number of
// front ends.
type Registry struct {
	mu       sync.RWMutex
	services map[string]TextService
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{services: map[string]TextService{}}
}

// NormalizeKey trims and lower-cases a catalogue key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (r *Registry) Register(key string, svc TextService) error {
	key = NormalizeKey(key)
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidService)
	}
	if svc == nil {
		return fmt.Errorf("%w: nil service for %q", ErrInvalidService, key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateService, key)
	}
	r.services[key] = svc
	r.order = append(r.order, key)
	return nil
}

func (r *Registry) Resolve(key string) (TextService, error) {
	r.mu.RLock()
	svc, ok := r.services[NormalizeKey(key)]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownServiceError{Key: key}
	}
	return svc, nil
}

// Run resolves key and applies the service to input.
func (r *Registry) Run(key, input string) (string, error) {
	svc, err := r.Resolve(key)
	if err != nil {
		return "", err
	}
	return svc.Execute(input), nil
}

func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.services[NormalizeKey(key)]
	return ok
}

// Names returns the keys in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, Entry{Key: key, Name: r.services[key].Name()})
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
