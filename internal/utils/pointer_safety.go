package utils

// Value dereferences a pointer, returning the zero value when the pointer
// is nil. Useful when reading optional wire fields.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
