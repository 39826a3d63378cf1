// Package errs holds the error kinds surfaced by the scoring pipeline.
// Wrap them with fmt.Errorf("...: %w") and test with errors.Is.
//
// Rows excluded by the CDR length filter are not errors and have no kind here.
package errs

import "errors"

var (
	// ErrMalformedInput covers unparseable sequences, numbering failures and
	// residues outside the encoder alphabet.
	ErrMalformedInput = errors.New("malformed input")

	// ErrShapeMismatch means an encoded feature width does not match what a
	// model expects. It signals encoder/model version skew and aborts the call.
	ErrShapeMismatch = errors.New("feature shape mismatch")

	// ErrDegenerateInput is an arithmetic failure on an empty region.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrAssetNotFound is returned by asset stores for unknown names.
	ErrAssetNotFound = errors.New("model asset not found")
)
