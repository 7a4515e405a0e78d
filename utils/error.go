package utils

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrExecSequential executes every function in order and accumulates the
// failures; a failing function does not stop the ones after it
func ErrExecSequential(functions ...func() error) error {
	var multErr *multierror.Error
	for _, one := range functions {
		if err := one(); err != nil {
			multErr = multierror.Append(multErr, err)
		}
	}
	return multErr.ErrorOrNil()
}

// ErrExecFormat formats the error returned from a function according to the provided format string.
func ErrExecFormat(format string, function func() error) func() error {
	return func() error {
		if err := function(); err != nil {
			return fmt.Errorf(format, err)
		}
		return nil
	}
}
