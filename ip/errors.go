package ip

import (
	"github.com/pkg/errors"
)

// ErrMalformedInput is returned (wrapped) by every parser in this package.
var ErrMalformedInput = errors.New("malformed input")

func malformed(kind, s, reason string) error {
	return errors.Wrapf(ErrMalformedInput, "%s %q: %s", kind, s, reason)
}
