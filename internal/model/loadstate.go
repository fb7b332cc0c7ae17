package model

// LoadPhase is the fetch status of an asynchronously loaded value.
type LoadPhase int

const (
	NotLoaded LoadPhase = iota
	Loading
	Loaded
	Failed
)

// LoadState holds a value of type T together with its fetch status.
// Transitions happen only through a completed fetch: Loaded carries
// fresh data, Failed carries the error and discards any previous data
// so the view never shows stale entries next to an error.
type LoadState[T any] struct {
	Phase LoadPhase
	Data  T
	Err   error
}

// Succeed returns a Loaded state holding data.
func Succeed[T any](data T) LoadState[T] {
	return LoadState[T]{Phase: Loaded, Data: data}
}

// Fail returns a Failed state holding err. The zero value of T
// replaces whatever was loaded before.
func Fail[T any](err error) LoadState[T] {
	return LoadState[T]{Phase: Failed, Err: err}
}
