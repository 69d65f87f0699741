package service

import (
	"fmt"
	"sort"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/pkg/compare"
)

// ComputeDiff compares declared attributes against what the reader observed.
// Only declared fields participate: observed fields nobody declared are
// unmanaged and never produce drift. A field declared nil asserts emptiness
// remotely; a field absent from the declared set is skipped entirely. When
// the resource was not found, every declared non-ignored field differs.
func ComputeDiff(declared, observed domain.AttributeSet, found bool, policy domain.DiffPolicy) (domain.DiffResult, error) {
	var result domain.DiffResult

	fields := declared.FieldNames()
	sort.Strings(fields)

	if !found {
		result.ObservedAbsent = true
		for _, field := range fields {
			if policy.RuleFor(field) == domain.RuleIgnore {
				continue
			}
			result.Fields = append(result.Fields, domain.FieldDiff{
				Field:    field,
				Declared: declared[field],
			})
		}
		return result, nil
	}

	for _, field := range fields {
		rule := policy.RuleFor(field)
		if rule == domain.RuleIgnore {
			continue
		}

		declaredVal := declared[field]
		observedVal, observedHas := observed[field]

		var (
			equal   bool
			details string
			err     error
		)
		switch rule {
		case domain.RuleSet:
			equal, details, err = compareSet(declaredVal, observedVal)
		case domain.RulePresence:
			equal, details = comparePresence(declaredVal, observedVal, observedHas)
		default:
			equal, err = compare.Values(declaredVal, observedVal, declaredVal != nil, observedHas)
		}
		if err != nil {
			return domain.DiffResult{}, errors.Wrap(err, errors.CodeComparisonError,
				fmt.Sprintf("comparing field '%s'", field))
		}
		if equal {
			continue
		}

		result.Fields = append(result.Fields, domain.FieldDiff{
			Field:    field,
			Declared: declaredVal,
			Observed: observedVal,
			Details:  details,
		})
		if policy.IsImmutable(field) {
			result.ImmutableConflicts = append(result.ImmutableConflicts, field)
		}
	}

	return result, nil
}

func compareSet(declaredVal, observedVal any) (bool, string, error) {
	declaredList, err := compare.StringSlice(declaredVal)
	if err != nil {
		return false, "", err
	}
	observedList, err := compare.StringSlice(observedVal)
	if err != nil {
		return false, "", err
	}
	equal, details := compare.Sets(declaredList, observedList)
	return equal, details, nil
}

func comparePresence(declaredVal, observedVal any, observedHas bool) (bool, string) {
	declPresent := valuePresent(declaredVal)
	obsPresent := observedHas && valuePresent(observedVal)

	if declPresent != obsPresent {
		if declPresent {
			return false, "declared but not present remotely"
		}
		return false, "present remotely but declared absent"
	}
	if !declPresent {
		return true, ""
	}
	if fmt.Sprintf("%v", declaredVal) != fmt.Sprintf("%v", observedVal) {
		return false, "content digest differs"
	}
	return true, ""
}

func valuePresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	}
	return true
}
