// Package errs declares the sentinel error values shared by every
// layer of the tree (codec, data layer, node layer, reader). Callers
// compare against these with errors.Is; wrapping (github.com/pkg/errors)
// adds context without losing that comparability.
package errs

import "errors"

var (
	// ErrEncodingOverflow is returned when a data fragment exceeds the
	// usable payload size for its block kind.
	ErrEncodingOverflow = errors.New("blockbtree: encoding overflow")

	// ErrNodeOverflow is returned when more entries are packed into a
	// node block than its fan-out allows.
	ErrNodeOverflow = errors.New("blockbtree: node overflow")

	// ErrNotFound is the normal "key absent" lookup outcome.
	ErrNotFound = errors.New("blockbtree: not found")

	// ErrMalformedBlock indicates a block's header is inconsistent
	// with the kind it was expected to be (corruption).
	ErrMalformedBlock = errors.New("blockbtree: malformed block")
)
