package result

import "errors"

// ErrNilFailure is stored in place of a nil error passed to Failure.
var ErrNilFailure = errors.New("result: failure without a reason")
