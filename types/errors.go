package types

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by block construction, verification and the DA protocol.
var (
	// ErrMalformedSource is returned when an upstream block or header cannot be parsed into the model.
	ErrMalformedSource = errors.New("malformed source block")

	// ErrHashMismatch is returned when a recomputed data or block hash disagrees with the declared one.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrMalformedBlob is returned when a DA blob cannot be decoded.
	ErrMalformedBlob = errors.New("malformed blob")

	// ErrSignatureInvalid is returned when a blob's public key or signature does not verify.
	ErrSignatureInvalid = errors.New("invalid signature")

	// ErrNotFound is returned when nothing was found at the requested DA coordinate.
	ErrNotFound = errors.New("not found")
)

// TransportError is returned on failure of an underlying network call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err, unless it is nil.
func NewTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// IsTransport reports whether err was caused by a failed network call.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
