// Package result provides a two-variant computation result used by the
// collection and merge pipeline in place of panics or multi-value returns
// threaded through folds.
//
// A Result is either a success carrying a value or a failure carrying an
// error. Failures pass unchanged through Map and Bind, which makes a chain of
// steps short-circuit on the first failure:
//
//	r := result.Bind(resolve(raw), func(e Entry) result.Result[Entry] {
//	    return validateAll(e)
//	})
//	if err := r.Err(); err != nil {
//	    ...
//	}
package result

import "fmt"

// Result holds either a success value or a failure reason.
// The zero value is a success holding the zero value of T.
type Result[T any] struct {
	value T
	err   error
}

// Success returns a successful Result carrying v.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure returns a failed Result carrying err.
// A nil err is replaced by ErrNilFailure so that a failure can never be
// mistaken for a success.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = ErrNilFailure
	}
	return Result[T]{err: err}
}

// Failuref returns a failed Result with a formatted reason.
func Failuref[T any](format string, args ...any) Result[T] {
	return Failure[T](fmt.Errorf(format, args...))
}

// IsSuccess reports whether r holds a value.
func (r Result[T]) IsSuccess() bool { return r.err == nil }

// IsFailure reports whether r holds a failure reason.
func (r Result[T]) IsFailure() bool { return r.err != nil }

// Err returns the failure reason, or nil for a success.
func (r Result[T]) Err() error { return r.err }

// Get returns the value and the failure reason in the usual Go shape.
func (r Result[T]) Get() (T, error) { return r.value, r.err }

// Value returns the success value. Calling it on a failure is a programming
// error and panics.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic(fmt.Sprintf("result: Value called on failure: %v", r.err))
	}
	return r.value
}

// ValueOr returns the success value, or def for a failure.
func (r Result[T]) ValueOr(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// MapFailure transforms the failure reason. It is a no-op on a success.
func (r Result[T]) MapFailure(f func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Failure[T](f(r.err))
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.err != nil {
		return fmt.Sprintf("Failure(%v)", r.err)
	}
	return fmt.Sprintf("Success(%v)", r.value)
}

// Map applies f to the success value of r. Failures are returned unchanged.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Success(f(r.value))
}

// Bind applies f to the success value of r and returns its Result.
// Failures short-circuit: f is not called and the failure is propagated.
func Bind[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return f(r.value)
}

// Fold threads an accumulator through items from left to right using Bind.
// Once a step fails, the remaining items are not visited.
func Fold[T, A any](items []T, init Result[A], step func(A, T) Result[A]) Result[A] {
	acc := init
	for _, item := range items {
		if acc.err != nil {
			return acc
		}
		acc = Bind(acc, func(a A) Result[A] { return step(a, item) })
	}
	return acc
}

// Partition splits results into success values and failure reasons, keeping
// the relative order of each side. It never short-circuits.
func Partition[T any](rs []Result[T]) ([]T, []error) {
	var values []T
	var errs []error
	for _, r := range rs {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		values = append(values, r.value)
	}
	return values, errs
}
