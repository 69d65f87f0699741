package domain

// ComparisonRule selects how one declared field is compared against the
// observed value.
type ComparisonRule string

const (
	// RuleExact requires equality after type normalization.
	RuleExact ComparisonRule = "exact"
	// RuleSet compares list fields order-independently with exact member match.
	RuleSet ComparisonRule = "set"
	// RulePresence compares existence of an optional sub-resource; when both
	// sides exist, content digests must match. The digest is computed
	// outside the core and carried in the attribute value.
	RulePresence ComparisonRule = "presence"
	// RuleIgnore excludes the field from drift detection (server-assigned
	// identifiers, timestamps).
	RuleIgnore ComparisonRule = "ignore"
)

// DiffPolicy declares, per resource kind, how each field is compared and
// which fields cannot change in place. Fields missing from Rules default to
// RuleIgnore. Immutability is always declared, never inferred.
type DiffPolicy struct {
	Rules     map[string]ComparisonRule
	Immutable []string
}

func (p DiffPolicy) RuleFor(field string) ComparisonRule {
	if rule, ok := p.Rules[field]; ok {
		return rule
	}
	return RuleIgnore
}

func (p DiffPolicy) IsImmutable(field string) bool {
	for _, f := range p.Immutable {
		if f == field {
			return true
		}
	}
	return false
}

type FieldDiff struct {
	Field    string
	Declared any
	Observed any
	Details  string
}

// DiffResult is the outcome of comparing a declared attribute set against
// an observed one. ObservedAbsent means no remote resource was found and
// every declared field is treated as differing.
type DiffResult struct {
	ObservedAbsent     bool
	Fields             []FieldDiff
	ImmutableConflicts []string
}

func (d DiffResult) Empty() bool {
	return len(d.Fields) == 0
}

func (d DiffResult) NeedsUpdate() bool {
	return !d.Empty()
}

func (d DiffResult) HasImmutableConflict() bool {
	return len(d.ImmutableConflicts) > 0
}

func (d DiffResult) ChangedFields() []string {
	fields := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		fields = append(fields, f.Field)
	}
	return fields
}
