package utils

// Value dereferences p, yielding the zero value when p is nil. Backend
// response fields are optional on the wire, so decoded structs carry
// pointers; this keeps the call sites nil-safe.
func Value[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}

// Ptr returns a pointer to v, mostly for building test fixtures.
func Ptr[T any](v T) *T {
	return &v
}
