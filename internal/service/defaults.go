package service

import "fmt"

// RepeatCounts are the repeat variants shipped in the stock catalogue.
var RepeatCounts = []int{2, 3, 5}

type keyed struct {
	key string
	svc TextService
}

// RegisterDefaults installs the stock catalogue into r. The order here is the
// order front ends list services in.
func RegisterDefaults(r *Registry, src RandSource) error {
	entries := []keyed{
		{"greeting", &Greeting{}},
		{"reverse", &Reverse{}},
	}
	for _, n := range RepeatCounts {
		entries = append(entries, keyed{fmt.Sprintf("repeat-%d", n), NewRepeat(n)})
	}
	entries = append(entries,
		keyed{"uppercase", &Uppercase{}},
		keyed{"lowercase", &Lowercase{}},
		keyed{"count", &Count{}},
		keyed{"remove-spaces", &RemoveSpaces{}},
		keyed{"capitalize", &Capitalize{}},
		keyed{"cipher", NewCipher(DefaultShift)},
		keyed{"shuffle", NewShuffle(src)},
	)
	for _, e := range entries {
		if err := r.Register(e.key, e.svc); err != nil {
			return err
		}
	}
	return nil
}

// NewDefault returns a registry holding only the stock catalogue.
func NewDefault(src RandSource) *Registry {
	r := NewRegistry()
	if err := RegisterDefaults(r, src); err != nil {
		panic(fmt.Sprintf("service: stock catalogue: %v", err))
	}
	return r
}
