package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// TopLevelKeys is the exact required set at the report root.
var TopLevelKeys = []string{
	"version", "reportMeta", "subject", "purchase", "propertySnapshot",
	"units", "rents", "rentComps", "operatingAssumptions", "financing",
	"totals", "sensitivity", "negotiation", "glossary",
}

// SensitivityScenarios are the five cases every report carries.
var SensitivityScenarios = []string{"rentMinus10", "baseCase", "rentPlus10", "opExMinus10", "opExPlus10"}

// ScenarioFields is the shape shared by every sensitivity case.
var ScenarioFields = []string{"noiAnnual", "capRatePct", "dscr", "cashFlowAnnual"}

// Minimum array lengths the renderer depends on.
const (
	MinUnits     = 1
	MinRentComps = 5
)

// Violation is one broken contract rule.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ContractError collects every violation found by CheckContract.
type ContractError struct {
	Violations []Violation
}

func (e *ContractError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "schema contract violated: " + strings.Join(parts, "; ")
}

// CheckContract verifies the structural guarantees consumers rely on: the
// root key set, closed objects everywhere, fully required property lists,
// minimum array sizes, and uniform nullable sensitivity scenarios. It returns
// a *ContractError listing all violations, or nil.
func (s *Schema) CheckContract() error {
	var vs []Violation
	add := func(path, format string, args ...interface{}) {
		vs = append(vs, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if !hasType(s.tree, "object") {
		add("", "root must be an object")
	}
	missing, extra := diff(stringSet(s.tree["required"]), TopLevelKeys)
	for _, k := range missing {
		add("", "required top-level key %q is missing", k)
	}
	for _, k := range extra {
		add("", "unexpected required top-level key %q", k)
	}

	walk(s.tree, "", true, func(path string, node map[string]interface{}, _ bool) {
		if !hasType(node, "object") {
			return
		}
		if ap, ok := node["additionalProperties"].(bool); !ok || ap {
			add(path, "additionalProperties must be false")
		}
		props, _ := node["properties"].(map[string]interface{})
		req := stringSet(node["required"])
		for name := range props {
			if !req[name] {
				add(join(path, name), "property must be listed as required; use a null type for unknown values")
			}
		}
	})

	props, _ := s.tree["properties"].(map[string]interface{})
	checkMinItems(props, "units", MinUnits, add)
	checkMinItems(props, "rentComps", MinRentComps, add)

	sens, _ := props["sensitivity"].(map[string]interface{})
	if sens == nil {
		add("sensitivity", "sensitivity is not defined")
	} else {
		scenarios, _ := sens["properties"].(map[string]interface{})
		missing, extra := diffKeys(scenarios, SensitivityScenarios)
		for _, k := range missing {
			add("sensitivity", "scenario %q is missing", k)
		}
		for _, k := range extra {
			add("sensitivity", "unexpected scenario %q", k)
		}
		for _, name := range SensitivityScenarios {
			sc, _ := scenarios[name].(map[string]interface{})
			if sc == nil {
				continue
			}
			fields, _ := sc["properties"].(map[string]interface{})
			missing, extra := diffKeys(fields, ScenarioFields)
			for _, k := range missing {
				add("sensitivity."+name, "field %q is missing", k)
			}
			for _, k := range extra {
				add("sensitivity."+name, "unexpected field %q", k)
			}
			for _, f := range ScenarioFields {
				fn, _ := fields[f].(map[string]interface{})
				if fn != nil && !(hasType(fn, "number") && hasType(fn, "null")) {
					add("sensitivity."+name+"."+f, "must be typed number or null")
				}
			}
		}
	}

	if len(vs) == 0 {
		return nil
	}
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Path < vs[j].Path })
	return &ContractError{Violations: vs}
}

func checkMinItems(props map[string]interface{}, name string, min int, add func(string, string, ...interface{})) {
	node, _ := props[name].(map[string]interface{})
	if node == nil || !hasType(node, "array") {
		add(name, "must be an array")
		return
	}
	n := number(node["minItems"])
	if n == nil || int(*n) < min {
		add(name, "minItems must be at least %d", min)
	}
}

// ContractViolations unwraps a CheckContract error.
func ContractViolations(err error) []Violation {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Violations
	}
	return nil
}

func diffKeys(m map[string]interface{}, want []string) (missing, extra []string) {
	set := make(map[string]bool, len(m))
	for k := range m {
		set[k] = true
	}
	return diff(set, want)
}

func diff(have map[string]bool, want []string) (missing, extra []string) {
	wantSet := make(map[string]bool, len(want))
	for _, k := range want {
		wantSet[k] = true
		if !have[k] {
			missing = append(missing, k)
		}
	}
	for k := range have {
		if !wantSet[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return missing, extra
}
