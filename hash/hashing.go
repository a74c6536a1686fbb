package hash

import (
	"math/bits"

	"github.com/minio/sha256-simd"
)

var (
	leafPrefix  = []byte{0}
	innerPrefix = []byte{1}
)

// Size is the size of the digests produced by this package.
const Size = sha256.Size

// Sum returns the SHA-256 digest of bz.
func Sum(bz []byte) []byte {
	h := sha256.Sum256(bz)
	return h[:]
}

// EmptyHash is the root of a tree without any leaves.
func EmptyHash() []byte {
	return Sum(nil)
}

// LeafHash returns the domain separated hash of a single leaf.
func LeafHash(leaf []byte) []byte {
	s := sha256.New()
	s.Write(leafPrefix)
	s.Write(leaf)
	return s.Sum(nil)
}

// InnerHash returns the domain separated hash of two child nodes.
func InnerHash(left, right []byte) []byte {
	s := sha256.New()
	s.Write(innerPrefix)
	s.Write(left)
	s.Write(right)
	return s.Sum(nil)
}

// MerkleRoot computes the root of the binary Merkle tree built over items
// (RFC 6962). For n > 1 leaves the tree is split at the largest power of two
// strictly smaller than n, so trees with a non power of two number of leaves
// are never padded.
func MerkleRoot(items [][]byte) []byte {
	switch len(items) {
	case 0:
		return EmptyHash()
	case 1:
		return LeafHash(items[0])
	default:
		k := splitPoint(len(items))
		left := MerkleRoot(items[:k])
		right := MerkleRoot(items[k:])
		return InnerHash(left, right)
	}
}

// splitPoint returns the largest power of two less than n (n > 1).
func splitPoint(n int) int {
	if n < 2 {
		panic("hash: split point requested for less than two items")
	}
	k := 1 << (bits.Len(uint(n)) - 1)
	if k == n {
		k >>= 1
	}
	return k
}
