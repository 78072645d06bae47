//go:build !linux && !darwin

package service

import "fmt"

func LoadPlugins(r *Registry, paths []string) error {
	for _, p := range paths {
		if p != "" {
			return fmt.Errorf("plugins are only supported on linux and darwin")
		}
	}
	return nil
}
