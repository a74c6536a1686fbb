package conv

import "errors"

var (
	// ErrNilKey is returned when the node key or its private key is missing.
	ErrNilKey = errors.New("key can't be nil")
	// ErrUnsupportedKeyType is returned for node keys that can't sign blobs.
	ErrUnsupportedKeyType = errors.New("unsupported key type")
)
