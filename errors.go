package blockbtree

import "blockbtree/errs"

// Sentinel errors re-exported from the internal errs package so
// callers can write errors.Is(err, blockbtree.ErrNotFound) without
// reaching into an internal package. They are the exact same error
// values errs uses internally, so errors.Is comparisons work across
// both the public and internal call paths.
var (
	ErrNotFound         = errs.ErrNotFound
	ErrEncodingOverflow = errs.ErrEncodingOverflow
	ErrNodeOverflow     = errs.ErrNodeOverflow
	ErrMalformedBlock   = errs.ErrMalformedBlock
)
