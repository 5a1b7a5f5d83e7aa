package util

// Ptr returns a pointer to v. Useful for optional struct fields that
// distinguish "unset" from an explicit zero value.
func Ptr[T any](v T) *T {
	return &v
}
