package registry

import (
	"errors"
	"fmt"
	"path"
)

// ErrModuleLoad wraps any failure while loading a module.
var ErrModuleLoad = errors.New("registry: module load failed")

// Module is a unit of declarations. Every bounded context exposes one and the
// composition root lists them in a manifest.
type Module interface {
	Name() string
	Declare(r *Registry) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc struct {
	ModuleName string
	Fn         func(r *Registry) error
}

func (m ModuleFunc) Name() string { return m.ModuleName }

func (m ModuleFunc) Declare(r *Registry) error { return m.Fn(r) }

// Load declares every module whose name matches one of patterns (path.Match
// syntax; no patterns selects everything) into r, in manifest order. Each
// module name is declared at most once. The first failure aborts the load and
// is returned wrapped in ErrModuleLoad; the registry must then be discarded.
func Load(r *Registry, patterns []string, modules ...Module) ([]string, error) {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrModuleLoad, p, err)
		}
	}

	seen := make(map[string]bool, len(modules))
	var loaded []string
	for _, m := range modules {
		if m == nil {
			return loaded, fmt.Errorf("%w: nil module in manifest", ErrModuleLoad)
		}
		name := m.Name()
		if seen[name] || !matchAny(patterns, name) {
			continue
		}
		seen[name] = true

		if err := m.Declare(r); err != nil {
			return loaded, fmt.Errorf("%w: %s: %w", ErrModuleLoad, name, err)
		}
		loaded = append(loaded, name)

		r.mu.Lock()
		r.modules = append(r.modules, name)
		r.mu.Unlock()
	}
	return loaded, nil
}

func matchAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
