package vars

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ErrSubstitutionCycle is wrapped by every CycleError.
var ErrSubstitutionCycle = errors.New("substitution cycle")

// CycleError reports a variable that references itself, directly or through
// other variables.
type CycleError struct {
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("substitution cycle detected at variable %q", e.Name)
}

func (e *CycleError) Unwrap() error {
	return ErrSubstitutionCycle
}

// Substitute replaces every {{ name }} reference in text with its value,
// expanding references inside values as well. Undefined names are left as
// written. A cycle aborts the whole substitution.
func Substitute(text string, variables map[string]string) (string, error) {
	return expand(text, variables, make(map[string]bool))
}

func expand(text string, variables map[string]string, active map[string]bool) (string, error) {
	var failure error
	out := variablePattern.ReplaceAllStringFunc(text, func(match string) string {
		if failure != nil {
			return match
		}
		name := strings.TrimSpace(match[2 : len(match)-2])
		value, ok := variables[name]
		if name == "" || !ok {
			return match
		}
		if active[name] {
			failure = &CycleError{Name: name}
			return match
		}

		active[name] = true
		resolved, err := expand(value, variables, active)
		delete(active, name)
		if err != nil {
			failure = err
			return match
		}
		return resolved
	})
	if failure != nil {
		return "", failure
	}
	return out, nil
}

// SubstituteMap substitutes keys and values of m into a new map.
func SubstituteMap(m map[string]string, variables map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		key, err := Substitute(k, variables)
		if err != nil {
			return nil, err
		}
		value, err := Substitute(v, variables)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// Unresolved returns the names referenced in text that have no value, in
// order of first appearance.
func Unresolved(text string, variables map[string]string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		if _, ok := variables[name]; !ok {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
