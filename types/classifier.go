package types

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// DefaultSequencerMsgTypeURL is the type URL of the sequencer message that tags a
// transaction with its destination rollup.
const DefaultSequencerMsgTypeURL = "/sequencer.v1beta1.MsgSequencerData"

// Classifier extracts the destination namespace embedded in a transaction payload.
//
// ok is false when the transaction carries no destination, in which case it belongs
// to the sequencer itself.
type Classifier interface {
	Classify(tx []byte) (ns Namespace, ok bool)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(tx []byte) (Namespace, bool)

// Classify implements Classifier.
func (f ClassifierFunc) Classify(tx []byte) (Namespace, bool) {
	return f(tx)
}

// NoopClassifier routes every transaction to the default namespace.
var NoopClassifier Classifier = ClassifierFunc(func([]byte) (Namespace, bool) {
	return Namespace{}, false
})

// SequencerMsgClassifier classifies Cosmos SDK transactions.
//
// A transaction is tagged when one of its messages is an Any with TypeURL whose value
// has a non-empty chain ID in field 1. The namespace is NewNamespace(chainID).
// Transactions that do not decode are treated as untagged.
type SequencerMsgClassifier struct {
	TypeURL string
}

var _ Classifier = &SequencerMsgClassifier{}

// NewSequencerMsgClassifier returns a classifier for the given message type URL, or
// for DefaultSequencerMsgTypeURL when typeURL is empty.
func NewSequencerMsgClassifier(typeURL string) *SequencerMsgClassifier {
	if typeURL == "" {
		typeURL = DefaultSequencerMsgTypeURL
	}
	return &SequencerMsgClassifier{TypeURL: typeURL}
}

// protobuf field numbers of the Cosmos SDK transaction encoding
const (
	txRawBodyField      protowire.Number = 1
	txBodyMessagesField protowire.Number = 1
	anyTypeURLField     protowire.Number = 1
	anyValueField       protowire.Number = 2
	seqMsgChainIDField  protowire.Number = 1
)

// Classify implements Classifier.
func (c *SequencerMsgClassifier) Classify(tx []byte) (Namespace, bool) {
	var (
		ns    Namespace
		found bool
	)
	body, ok := firstBytesField(tx, txRawBodyField)
	if !ok {
		return ns, false
	}
	err := rangeBytesField(body, txBodyMessagesField, func(msg []byte) bool {
		typeURL, _ := firstBytesField(msg, anyTypeURLField)
		if string(typeURL) != c.TypeURL {
			return true
		}
		value, _ := firstBytesField(msg, anyValueField)
		chainID, _ := firstBytesField(value, seqMsgChainIDField)
		if len(chainID) == 0 {
			return true
		}
		ns, found = NewNamespace(chainID), true
		return false
	})
	if err != nil {
		return Namespace{}, false
	}
	return ns, found
}

func firstBytesField(b []byte, num protowire.Number) ([]byte, bool) {
	var (
		out   []byte
		found bool
	)
	err := rangeBytesField(b, num, func(v []byte) bool {
		out, found = v, true
		return false
	})
	if err != nil {
		return nil, false
	}
	return out, found
}

// rangeBytesField calls fn for every length-delimited field num of the message b
// until fn returns false.
func rangeBytesField(b []byte, num protowire.Number, fn func([]byte) bool) error {
	for len(b) > 0 {
		n, typ, l := protowire.ConsumeTag(b)
		if l < 0 {
			return protowire.ParseError(l)
		}
		b = b[l:]
		if n == num && typ == protowire.BytesType {
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			if !fn(v) {
				return nil
			}
			b = b[m:]
			continue
		}
		m := protowire.ConsumeFieldValue(n, typ, b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}
