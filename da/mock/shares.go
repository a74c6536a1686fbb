package mock

import (
	"bytes"
	"encoding/binary"

	"github.com/rollkit/sequencer-relayer/types"
)

// This code is extracted from celestia-app. It's here to build shares from messages (serialized blobs).

const (
	shareSize    = 256
	msgShareSize = shareSize - types.NamespaceSize
)

// splitMessage breaks the data in a message into the minimum number of
// namespaced shares
func splitMessage(rawData []byte, nid []byte) [][]byte {
	shares := make([][]byte, 0)
	for len(rawData) > 0 {
		shareSizeOrLen := min(msgShareSize, len(rawData))
		rawShare := append(append(
			make([]byte, 0, shareSize),
			nid...),
			rawData[:shareSizeOrLen]...,
		)
		shares = append(shares, zeroPadIfNecessary(rawShare, shareSize))
		rawData = rawData[shareSizeOrLen:]
	}
	return shares
}

func min(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

func zeroPadIfNecessary(share []byte, width int) []byte {
	oldLen := len(share)
	if oldLen < width {
		missingBytes := width - oldLen
		padding := bytes.Repeat([]byte{0}, missingBytes)
		share = append(share, padding...)
		return share
	}
	return share
}

// marshalDelimited prefixes data with the length of that encoding.
func marshalDelimited(data []byte) []byte {
	lenBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(lenBuf, uint64(len(data)))
	return append(lenBuf[:n], data...)
}

// SplitIntoShares returns the namespaced shares of the length-delimited blob.
func SplitIntoShares(ns types.Namespace, blob []byte) [][]byte {
	return splitMessage(marshalDelimited(blob), ns[:])
}
