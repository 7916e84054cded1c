package scopes

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MissingScopeError reports the first scope requirement a granted scope set
// does not cover.
type MissingScopeError struct {
	Module string // Module whose requirement is unmet
	Scope  string // The missing scope string
}

// Error implements the error interface
func (e *MissingScopeError) Error() string {
	return fmt.Sprintf("missing required scope %s for module %s", e.Scope, e.Module)
}

// Registry maps module names (gmail, calendar, drive, ...) to the OAuth
// scopes they require. It is constructed once at process start and passed by
// handle to the token manager; registrations after startup are safe but not
// expected.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]map[string]string // module -> scope -> description
	union   map[string]struct{}
}

// NewRegistry creates an empty scope registry
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]map[string]string),
		union:   make(map[string]struct{}),
	}
}

// Register adds a scope to a module's requirement set. Registering the same
// scope twice is a no-op, so modules can re-declare their scopes freely.
func (r *Registry) Register(module, scope, description string) {
	if module == "" || scope == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	scopes, ok := r.modules[module]
	if !ok {
		scopes = make(map[string]string)
		r.modules[module] = scopes
	}
	scopes[scope] = description
	r.union[scope] = struct{}{}
}

// ModuleScopes returns the sorted scope set registered for a module.
// Returns nil for unknown modules.
func (r *Registry) ModuleScopes(module string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scopes, ok := r.modules[module]
	if !ok {
		return nil
	}
	return sortedKeys(scopes)
}

// Modules returns the sorted list of registered module names.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the deduplicated union of scopes across every registered
// module, sorted for deterministic consent URLs.
func (r *Registry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]string, 0, len(r.union))
	for scope := range r.union {
		all = append(all, scope)
	}
	sort.Strings(all)
	return all
}

// Covers reports whether the granted scope list includes the given scope.
// The broad https://mail.google.com/ grant covers the narrower gmail.* scopes.
func Covers(granted []string, scope string) bool {
	for _, g := range granted {
		if g == scope {
			return true
		}
		if g == "https://mail.google.com/" && strings.HasPrefix(scope, "https://www.googleapis.com/auth/gmail.") {
			return true
		}
	}
	return false
}

// Validate checks a granted scope list against every registered module's
// requirements, returning a MissingScopeError for the first unmet one.
// Module and scope iteration is sorted so the reported scope is
// deterministic.
func (r *Registry) Validate(granted []string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modules := make([]string, 0, len(r.modules))
	for name := range r.modules {
		modules = append(modules, name)
	}
	sort.Strings(modules)

	for _, module := range modules {
		for _, scope := range sortedKeys(r.modules[module]) {
			if !Covers(granted, scope) {
				return &MissingScopeError{Module: module, Scope: scope}
			}
		}
	}
	return nil
}

// ValidateModules is like Validate but only checks the named modules,
// used when a caller scope-restricts a validation to one service.
func (r *Registry) ValidateModules(granted []string, modules ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, module := range modules {
		scopes, ok := r.modules[module]
		if !ok {
			continue
		}
		for _, scope := range sortedKeys(scopes) {
			if !Covers(granted, scope) {
				return &MissingScopeError{Module: module, Scope: scope}
			}
		}
	}
	return nil
}

// ValidateRequired checks a granted scope list against an explicit
// requirement list rather than the registry contents.
func ValidateRequired(granted, required []string) error {
	for _, scope := range required {
		if !Covers(granted, scope) {
			return &MissingScopeError{Module: "requested", Scope: scope}
		}
	}
	return nil
}

// Split breaks a provider scope string (space separated grant list) into its
// individual scopes.
func Split(scope string) []string {
	return strings.Fields(scope)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
