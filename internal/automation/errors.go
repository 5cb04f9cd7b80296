package automation

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// DispatchError wraps a failure raised by the real backend during invocation.
type DispatchError struct {
	Ritual  string
	Backend string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s dispatch via %s failed: %v", e.Ritual, e.Backend, e.Err)
}

// Unwrap exposes the backend error and classifies it as unavailable.
func (e *DispatchError) Unwrap() []error {
	return []error{errdefs.ErrUnavailable, e.Err}
}
