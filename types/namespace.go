package types

import (
	"encoding/hex"
	"fmt"

	"github.com/tendermint/tendermint/crypto/tmhash"
)

// NamespaceSize is the width of a DA namespace identifier in bytes.
const NamespaceSize = 8

// Namespace routes a blob on the DA layer.
type Namespace [NamespaceSize]byte

// DefaultNamespace carries the sequencer's own transactions and the block metadata.
var DefaultNamespace = Namespace{'s', 'e', 'q', 'b', 'l', 'o', 'c', 'k'}

// NewNamespace derives the namespace of an arbitrary identifier (e.g. a rollup chain ID).
//
// The derivation is the first NamespaceSize bytes of SHA-256(id) and must never change:
// sequencer and DA readers use it as a shared addressing scheme.
func NewNamespace(id []byte) Namespace {
	var ns Namespace
	copy(ns[:], tmhash.Sum(id))
	return ns
}

// ParseNamespace parses the hex form produced by Namespace.String.
func ParseNamespace(s string) (Namespace, error) {
	var ns Namespace
	bz, err := hex.DecodeString(s)
	if err != nil {
		return ns, fmt.Errorf("invalid namespace %q: %w", s, err)
	}
	if len(bz) != NamespaceSize {
		return ns, fmt.Errorf("invalid namespace %q: expected %d bytes, got %d", s, NamespaceSize, len(bz))
	}
	copy(ns[:], bz)
	return ns, nil
}

// IsDefault reports whether ns is the DefaultNamespace.
func (ns Namespace) IsDefault() bool {
	return ns == DefaultNamespace
}

// String returns the lower-case hex form of ns.
func (ns Namespace) String() string {
	return hex.EncodeToString(ns[:])
}

// MarshalText implements encoding.TextMarshaler so namespaces can key JSON objects.
func (ns Namespace) MarshalText() ([]byte, error) {
	return []byte(ns.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ns *Namespace) UnmarshalText(text []byte) error {
	parsed, err := ParseNamespace(string(text))
	if err != nil {
		return err
	}
	*ns = parsed
	return nil
}
