package domain

// AttributeSet is a flat mapping from field name to value: scalars, nested
// maps, or lists. Declared sets carry intent from the manifest; observed
// sets carry fact from the platform. A key present with a nil value means
// "remove this field if set remotely", which is distinct from the key being
// absent ("leave unmanaged"). Both loaders and the diff engine preserve
// this distinction.
type AttributeSet map[string]any

func (a AttributeSet) Clone() AttributeSet {
	if a == nil {
		return nil
	}
	out := make(AttributeSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Has reports whether the field is managed (present, even if nil).
func (a AttributeSet) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// IsNull reports whether the field is explicitly declared null.
func (a AttributeSet) IsNull(key string) bool {
	v, ok := a[key]
	return ok && v == nil
}

func (a AttributeSet) GetString(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (a AttributeSet) GetBool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// FieldNames returns the managed field names in no particular order.
func (a AttributeSet) FieldNames() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	return names
}
