package compare

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Values reports whether a declared and an observed value are equal for
// reconciliation purposes, taking existence into account. A side that does
// not exist equals an empty value on the other side; scalars are compared
// with type normalization (numeric strings against numbers, "true" against
// bool), maps and slices recursively.
func Values(declared, observed any, declaredExists, observedExists bool) (bool, error) {
	if !declaredExists && !observedExists {
		return true, nil
	}
	if !declaredExists {
		return isEmptyValue(observed), nil
	}
	if !observedExists {
		return isEmptyValue(declared), nil
	}

	if declared == nil && observed == nil {
		return true, nil
	}
	if declared == nil || observed == nil {
		return false, nil
	}

	dv := derefValue(reflect.ValueOf(declared))
	ov := derefValue(reflect.ValueOf(observed))

	if !dv.IsValid() && !ov.IsValid() {
		return true, nil
	}
	if !dv.IsValid() || !ov.IsValid() {
		return false, nil
	}

	if (!dv.Type().Comparable() || !ov.Type().Comparable()) && dv.Kind() == ov.Kind() {
		switch dv.Kind() {
		case reflect.Map:
			return mapsEqual(dv, ov)
		case reflect.Slice:
			return slicesEqual(dv, ov)
		default:
			return false, fmt.Errorf("cannot compare non-comparable types %s and %s", dv.Type(), ov.Type())
		}
	}

	if dv.Kind() == reflect.Bool || ov.Kind() == reflect.Bool {
		db, dok := toBool(dv)
		ob, ook := toBool(ov)
		if dok && ook {
			return db == ob, nil
		}
	}

	if isNumeric(dv) && isNumeric(ov) {
		df, dok := toFloat64(dv)
		of, ook := toFloat64(ov)
		if dok && ook {
			const tolerance = 1e-9
			diff := df - of
			return diff < tolerance && diff > -tolerance, nil
		}
	}

	if dv.Kind() == reflect.String && ov.Kind() == reflect.String {
		return dv.String() == ov.String(), nil
	}

	if dv.Type() == ov.Type() && dv.Type().Comparable() {
		return dv.Interface() == ov.Interface(), nil
	}

	return false, nil
}

// Sets compares two string slices as multisets, ignoring order. The second
// return value describes the difference when the sets are unequal.
func Sets(a, b []string) (bool, string) {
	countsA := make(map[string]int, len(a))
	for _, s := range a {
		countsA[s]++
	}
	countsB := make(map[string]int, len(b))
	for _, s := range b {
		countsB[s]++
	}

	equal := len(countsA) == len(countsB)
	if equal {
		for k, n := range countsA {
			if countsB[k] != n {
				equal = false
				break
			}
		}
	}
	if equal {
		return true, ""
	}
	return false, setDiffDetails(countsA, countsB)
}

// StringSlice coerces slice-typed values ([]string, []any, or any slice of
// stringable elements) into []string for set comparison. Nil yields an
// empty slice.
func StringSlice(v any) ([]string, error) {
	if v == nil {
		return []string{}, nil
	}
	if s, ok := v.([]string); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected a slice, got %T", v)
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, fmt.Sprintf("%v", rv.Index(i).Interface()))
	}
	return out, nil
}

// JSONStrings compares two JSON documents semantically, ignoring key order
// and formatting. Identical raw strings are equal even when not valid JSON.
func JSONStrings(a, b string) (bool, string) {
	if a == b {
		return true, ""
	}
	if a == "" || b == "" {
		return false, "one document is empty"
	}

	var da, db any
	if err := json.Unmarshal([]byte(a), &da); err != nil {
		return false, fmt.Sprintf("documents differ (first is not valid JSON: %v)", err)
	}
	if err := json.Unmarshal([]byte(b), &db); err != nil {
		return false, fmt.Sprintf("documents differ (second is not valid JSON: %v)", err)
	}

	if !cmp.Equal(da, db, cmpopts.EquateEmpty()) {
		return false, "JSON structures differ"
	}
	return true, ""
}

func mapsEqual(dv, ov reflect.Value) (bool, error) {
	if dv.Len() != ov.Len() {
		return false, nil
	}
	if dv.Len() == 0 {
		return true, nil
	}

	observedByKey := make(map[string]reflect.Value, ov.Len())
	it := ov.MapRange()
	for it.Next() {
		observedByKey[fmt.Sprintf("%v", it.Key().Interface())] = it.Value()
	}

	it = dv.MapRange()
	for it.Next() {
		key := fmt.Sprintf("%v", it.Key().Interface())
		obs, ok := observedByKey[key]
		if !ok {
			return false, nil
		}
		equal, err := Values(it.Value().Interface(), obs.Interface(), true, true)
		if err != nil {
			return false, fmt.Errorf("map key %q: %w", key, err)
		}
		if !equal {
			return false, nil
		}
	}
	return true, nil
}

func slicesEqual(dv, ov reflect.Value) (bool, error) {
	if dv.Len() != ov.Len() {
		return false, nil
	}
	for i := 0; i < dv.Len(); i++ {
		equal, err := Values(dv.Index(i).Interface(), ov.Index(i).Interface(), true, true)
		if err != nil {
			return false, fmt.Errorf("slice index %d: %w", i, err)
		}
		if !equal {
			return false, nil
		}
	}
	return true, nil
}

func setDiffDetails(countsA, countsB map[string]int) string {
	var added, removed, changed []string
	seen := make(map[string]struct{}, len(countsA)+len(countsB))
	for k := range countsA {
		seen[k] = struct{}{}
	}
	for k := range countsB {
		seen[k] = struct{}{}
	}

	for k := range seen {
		na, nb := countsA[k], countsB[k]
		switch {
		case na > 0 && nb == 0:
			removed = append(removed, k)
		case na == 0 && nb > 0:
			added = append(added, k)
		case na != nb:
			changed = append(changed, fmt.Sprintf("%s (x%d vs x%d)", k, na, nb))
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)

	var parts []string
	if len(removed) > 0 {
		parts = append(parts, fmt.Sprintf("missing: [%s]", strings.Join(removed, ", ")))
	}
	if len(added) > 0 {
		parts = append(parts, fmt.Sprintf("extra: [%s]", strings.Join(added, ", ")))
	}
	if len(changed) > 0 {
		parts = append(parts, fmt.Sprintf("count changed: [%s]", strings.Join(changed, ", ")))
	}
	if len(parts) == 0 {
		return "set contents differ"
	}
	return strings.Join(parts, "; ")
}

func derefValue(v reflect.Value) reflect.Value {
	for (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Chan, reflect.String:
		return val.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return val.IsNil()
	default:
		return reflect.DeepEqual(val.Interface(), reflect.Zero(val.Type()).Interface())
	}
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.String:
		_, err := strconv.ParseFloat(v.String(), 64)
		return err == nil
	default:
		return false
	}
}

func toFloat64(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.String:
		if f, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toBool(v reflect.Value) (bool, bool) {
	if v.Kind() == reflect.Bool {
		return v.Bool(), true
	}
	if v.Kind() == reflect.String {
		if b, err := strconv.ParseBool(v.String()); err == nil {
			return b, true
		}
	}
	return false, false
}
