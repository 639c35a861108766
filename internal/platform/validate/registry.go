// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// # Rule Contracts

// Predicate checks one field value. It returns ok=false with a client-facing
// message to fail the field; later rules for that field are then skipped.
type Predicate func(field string, value any) (message string, ok bool)

// RuleFactory turns the parameters written after ':' in a rule string into a
// ready [Predicate]. Bad parameters are reported here, at compile time.
type RuleFactory func(params []string) (Predicate, error)

// Rules maps a field name to its pipe-separated rule list, e.g.
//
//	validate.Rules{"email": "required|email|max:255"}
type Rules map[string]string

const (
	ruleSeparator  = "|"
	paramSeparator = ":"
	listSeparator  = ","
)

// # Registry

// Registry maps rule names to their factories. Built-in rules are present
// from [NewRegistry]; callers may add their own before compiling schemas.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]RuleFactory
}

// NewRegistry returns a registry preloaded with the built-in rules.
func NewRegistry() *Registry {
	registry := &Registry{factories: make(map[string]RuleFactory)}
	for name, factory := range builtinRules() {
		registry.factories[name] = factory
	}
	return registry
}

// Register adds a named rule. Registering a name twice is an error.
func (registry *Registry) Register(name string, factory RuleFactory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("validate: rule name and factory are required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.factories[name]; exists {
		return fmt.Errorf("validate: rule %q already registered", name)
	}
	registry.factories[name] = factory
	return nil
}

// Names lists the registered rule names in sorted order.
func (registry *Registry) Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (registry *Registry) lookup(name string) (RuleFactory, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	factory, ok := registry.factories[name]
	return factory, ok
}

// # Compilation

// Schema is a compiled rule set for one request shape. It is immutable and
// safe for concurrent use.
type Schema struct {
	fields      []compiledField
	knownFields []string
}

type compiledField struct {
	name       string
	predicates []Predicate
}

/*
Compile parses every rule string and binds it to its factory.

Parameters:
  - rules: Rules (field name to rule list)
  - knownFields: ...string (allowed body keys; empty means any key is accepted)

Returns:
  - *Schema: Ready-to-run schema
  - error: Unknown rule names or malformed parameters
*/
func (registry *Registry) Compile(rules Rules, knownFields ...string) (*Schema, error) {
	schema := &Schema{knownFields: slices.Clone(knownFields)}

	for _, field := range fieldOrder(rules, knownFields) {
		compiled := compiledField{name: field}

		for _, raw := range strings.Split(rules[field], ruleSeparator) {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}

			name, params, err := parseRule(raw)
			if err != nil {
				return nil, fmt.Errorf("validate: field %q: %w", field, err)
			}

			factory, ok := registry.lookup(name)
			if !ok {
				return nil, fmt.Errorf("validate: field %q: unknown rule %q", field, name)
			}

			predicate, err := factory(params)
			if err != nil {
				return nil, fmt.Errorf("validate: field %q rule %q: %w", field, name, err)
			}
			compiled.predicates = append(compiled.predicates, predicate)
		}

		schema.fields = append(schema.fields, compiled)
	}

	return schema, nil
}

// MustCompile is like [Registry.Compile] but panics on error. Handlers call it
// from their constructors so a bad rule stops the process at startup.
func (registry *Registry) MustCompile(rules Rules, knownFields ...string) *Schema {
	schema, err := registry.Compile(rules, knownFields...)
	if err != nil {
		panic(err)
	}
	return schema
}

// parseRule splits "name:param" into its name and parameter list.
// "[a,b]" is a single parameter containing the comma.
func parseRule(raw string) (string, []string, error) {
	parts := strings.Split(raw, paramSeparator)
	if len(parts) > 2 {
		return "", nil, fmt.Errorf("rule %q has more than one %q", raw, paramSeparator)
	}

	name := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return name, nil, nil
	}

	param := strings.TrimSpace(parts[1])
	switch {
	case param == "":
		return name, nil, nil
	case strings.HasPrefix(param, "[") && strings.HasSuffix(param, "]"):
		return name, []string{param[1 : len(param)-1]}, nil
	default:
		params := strings.Split(param, listSeparator)
		for i := range params {
			params[i] = strings.TrimSpace(params[i])
		}
		return name, params, nil
	}
}

// fieldOrder puts known fields first, in declaration order, then any
// remaining ruled fields alphabetically.
func fieldOrder(rules Rules, knownFields []string) []string {
	order := make([]string, 0, len(rules))
	for _, field := range knownFields {
		if _, ok := rules[field]; ok {
			order = append(order, field)
		}
	}

	var rest []string
	for field := range rules {
		if !slices.Contains(order, field) {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)

	return append(order, rest...)
}

// # Execution

// Validate runs the schema against a decoded JSON object. Unknown keys fail
// first, then each field runs its rules in order and stops at the first
// failure. The returned error's message is the first field failure.
func (schema *Schema) Validate(input map[string]any) error {
	v := &Validator{}

	if len(schema.knownFields) > 0 {
		keys := make([]string, 0, len(input))
		for key := range input {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			v.Custom(key, !slices.Contains(schema.knownFields, key), "Unknown parameter: "+key)
		}
	}

	for _, field := range schema.fields {
		value := input[field.name]
		for _, predicate := range field.predicates {
			message, ok := predicate(field.name, value)
			if ok {
				continue
			}
			v.Custom(field.name, message != "", message)
			break
		}
	}

	return v.Err()
}
