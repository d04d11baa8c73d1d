package check

import (
	"sort"
	"sync"

	"github.com/forgelint/forgelint/pkg/solidity"
)

// globalRegistry is the single global registry for all convention rules.
var globalRegistry = &Registry{
	rules: make(map[string]RuleDef),
}

// Registry stores registered rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef // keyed by ID
}

// RuleDef is a data-driven rule definition. Rules are stateless; all
// context comes from the parsed file passed to the Check function.
type RuleDef struct {
	ID          string     // identifier used in directives and overrides, e.g. "constant"
	Name        string     // human-readable name, e.g. "naming.constant-case"
	Description string     // one-line description for documentation
	Kinds       []FileKind // restrict to specific file kinds; nil/empty means all kinds
	Check       CheckFunc  // the check function

	// Documentation fields for the rules command
	Rationale   string // why this rule exists, what problems it prevents
	BadExample  string // code showing the anti-pattern
	GoodExample string // code showing the correct pattern
}

// AppliesTo reports whether the rule runs against files of the given kind.
func (r RuleDef) AppliesTo(kind FileKind) bool {
	if len(r.Kinds) == 0 {
		return true
	}
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// CheckFunc analyzes a parsed file and returns raw findings. Raw findings
// are produced in source order and filtered afterwards.
type CheckFunc func(file *solidity.File) []Finding

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(rule RuleDef) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID] = rule
}

// GetAll returns all registered rules, sorted by ID so callers iterate in
// a stable order.
func GetAll() []RuleDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// GetByID returns a rule by its ID.
func GetByID(id string) (RuleDef, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[id]
	return rule, ok
}

// GetByKind returns rules applicable to files of a specific kind, sorted
// by ID. Rules with an empty Kinds field are included.
func GetByKind(kind FileKind) []RuleDef {
	var rules []RuleDef
	for _, rule := range GetAll() {
		if rule.AppliesTo(kind) {
			rules = append(rules, rule)
		}
	}
	return rules
}

// IDs returns the sorted identifiers of all registered rules.
func IDs() []string {
	rules := GetAll()
	ids := make([]string, 0, len(rules))
	for _, rule := range rules {
		ids = append(ids, rule.ID)
	}
	return ids
}

// IsRule reports whether id names a registered rule.
func IsRule(id string) bool {
	_, ok := GetByID(id)
	return ok
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all registered rules. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = make(map[string]RuleDef)
}
