package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequencerMsgClassifier(t *testing.T) {
	c := NewSequencerMsgClassifier("")
	assert.Equal(t, DefaultSequencerMsgTypeURL, c.TypeURL)

	cases := []struct {
		name string
		tx   []byte
		ns   Namespace
		ok   bool
	}{
		{"tagged", NewSequencerMsgTx(DefaultSequencerMsgTypeURL, "rollup-a", []byte("payload")), NewNamespace([]byte("rollup-a")), true},
		{"other message type", NewSequencerMsgTx("/other.v1.Msg", "rollup-a", nil), Namespace{}, false},
		{"untagged", NewSequencerMsgTx("", "", []byte("payload")), Namespace{}, false},
		{"empty", nil, Namespace{}, false},
		{"garbage", []byte{0xff, 0xff, 0xff}, Namespace{}, false},
		{"truncated", NewSequencerMsgTx(DefaultSequencerMsgTypeURL, "rollup-a", nil)[:10], Namespace{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ns, ok := c.Classify(tc.tx)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.ns, ns)
		})
	}
}

func TestSequencerMsgClassifierCustomTypeURL(t *testing.T) {
	c := NewSequencerMsgClassifier("/custom.v1.MsgRoute")

	ns, ok := c.Classify(NewSequencerMsgTx("/custom.v1.MsgRoute", "chain-x", nil))
	assert.True(t, ok)
	assert.Equal(t, NewNamespace([]byte("chain-x")), ns)

	_, ok = c.Classify(NewSequencerMsgTx(DefaultSequencerMsgTypeURL, "chain-x", nil))
	assert.False(t, ok)
}

func TestNoopClassifier(t *testing.T) {
	_, ok := NoopClassifier.Classify(NewSequencerMsgTx(DefaultSequencerMsgTypeURL, "rollup-a", nil))
	assert.False(t, ok)
}
