package services

// Result is the outcome of a service call that completed without an
// unexpected error: either a success carrying data or a failure carrying a
// human-readable message.
type Result[T any] struct {
	data    T
	message string
	ok      bool
}

// Ok returns a successful result holding data.
func Ok[T any](data T) Result[T] {
	return Result[T]{data: data, ok: true}
}

// Fail returns a failed result. An empty message is replaced with a generic
// one so a failure never lacks an explanation.
func Fail[T any](message string) Result[T] {
	if message == "" {
		message = "Something went wrong"
	}
	return Result[T]{message: message}
}

// Succeeded reports whether the result is a success.
func (r Result[T]) Succeeded() bool { return r.ok }

// Data returns the success payload; it is the zero value for failures.
func (r Result[T]) Data() T { return r.data }

// Message returns the failure message; it is empty for successes.
func (r Result[T]) Message() string { return r.message }
