//go:build linux || darwin

package service

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"runtime"
	"sort"
	"strings"
)

// LoadPlugins opens every plugin named by paths and registers its services
// into r.
func LoadPlugins(r *Registry, paths []string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		resolved, err := resolvePluginPaths(path)
		if err != nil {
			return err
		}
		for _, pluginPath := range resolved {
			p, err := plugin.Open(pluginPath)
			if err != nil {
				return fmt.Errorf("open plugin %s: %w", pluginPath, err)
			}
			sym, err := p.Lookup(PluginSymbol)
			if err != nil {
				return fmt.Errorf("plugin %s: missing %s symbol", pluginPath, PluginSymbol)
			}
			if err := registerPluginSymbol(r, pluginPath, sym); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolvePluginPaths expands a directory to its .so files and a base path to
// the build for this platform.
func resolvePluginPaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return pluginsInDir(path)
	}
	if err == nil {
		return []string{path}, nil
	}
	base := strings.TrimSuffix(path, ".so")
	candidates := []string{
		fmt.Sprintf("%s.%s.%s.so", base, runtime.GOOS, runtime.GOARCH),
		fmt.Sprintf("%s.%s.so", base, runtime.GOARCH),
		base + ".so",
	}
	for _, cand := range candidates {
		if st, err := os.Stat(cand); err == nil && !st.IsDir() {
			return []string{cand}, nil
		}
	}
	return nil, fmt.Errorf("plugin not found: %s (tried %s)", path, strings.Join(candidates, ", "))
}

func pluginsInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read plugin dir %s: %w", dir, err)
	}
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() || !compatiblePlugin(entry.Name()) {
			continue
		}
		matches = append(matches, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no compatible plugins found in %s", dir)
	}
	return matches, nil
}

// compatiblePlugin skips .so files explicitly built for another platform.
func compatiblePlugin(name string) bool {
	if !strings.HasSuffix(name, ".so") {
		return false
	}
	parts := strings.Split(strings.TrimSuffix(name, ".so"), ".")
	if len(parts) >= 3 && knownGOOS(parts[len(parts)-2]) {
		return parts[len(parts)-2] == runtime.GOOS && parts[len(parts)-1] == runtime.GOARCH
	}
	if len(parts) >= 2 && knownGOARCH(parts[len(parts)-1]) {
		return parts[len(parts)-1] == runtime.GOARCH
	}
	return true
}

func knownGOOS(s string) bool {
	switch s {
	case "linux", "darwin", "windows", "freebsd", "openbsd", "netbsd":
		return true
	}
	return false
}

func knownGOARCH(s string) bool {
	switch s {
	case "amd64", "arm64", "386", "arm", "riscv64", "ppc64le", "s390x":
		return true
	}
	return false
}
