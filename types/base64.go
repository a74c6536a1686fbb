package types

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Base64String is an immutable byte string whose text form is standard base64.
//
// It is used for hashes, signatures, public keys and raw transactions.
type Base64String []byte

// Base64StringFromString decodes a standard base64 string.
func Base64StringFromString(s string) (Base64String, error) {
	bz, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 string: %w", err)
	}
	return bz, nil
}

// String implements fmt.Stringer.
func (b Base64String) String() string {
	return base64.StdEncoding.EncodeToString(b)
}

// Bytes returns the underlying bytes.
func (b Base64String) Bytes() []byte {
	return b
}

// Equal compares bytes, not text.
func (b Base64String) Equal(other Base64String) bool {
	return bytes.Equal(b, other)
}

// MarshalJSON implements json.Marshaler.
func (b Base64String) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Base64String) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*b = nil
		return nil
	}
	bz, err := Base64StringFromString(s)
	if err != nil {
		return err
	}
	*b = bz
	return nil
}
