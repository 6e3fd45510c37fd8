// Package assert holds constructor preconditions, a failed one is a
// programming error and panics.
package assert

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}
