package types

import (
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNamespace(t *testing.T) {
	assert := assert.New(t)

	digest := sha256.Sum256([]byte("rollup-a"))
	ns := NewNamespace([]byte("rollup-a"))
	assert.Equal(digest[:NamespaceSize], ns[:])
	assert.Equal(ns, NewNamespace([]byte("rollup-a")))
	assert.NotEqual(ns, NewNamespace([]byte("rollup-b")))
	assert.False(ns.IsDefault())

	assert.Equal("seqblock", string(DefaultNamespace[:]))
	assert.True(DefaultNamespace.IsDefault())
}

func TestParseNamespace(t *testing.T) {
	ns := NewNamespace([]byte("x"))
	parsed, err := ParseNamespace(ns.String())
	require.NoError(t, err)
	assert.Equal(t, ns, parsed)

	assert.Equal(t, "736571626c6f636b", DefaultNamespace.String())

	for _, s := range []string{"", "zz", "0102", "010203040506070809"} {
		_, err := ParseNamespace(s)
		assert.Error(t, err, s)
	}
}

func TestNamespaceAsJSONKey(t *testing.T) {
	require := require.New(t)

	in := map[Namespace]int{DefaultNamespace: 1, NewNamespace([]byte("r")): 2}
	bz, err := json.Marshal(in)
	require.NoError(err)
	require.Contains(string(bz), `"736571626c6f636b":1`)

	var out map[Namespace]int
	require.NoError(json.Unmarshal(bz, &out))
	require.Equal(in, out)
}

func TestBase64String(t *testing.T) {
	require := require.New(t)

	b := Base64String("hello")
	require.Equal("aGVsbG8=", b.String())

	bz, err := json.Marshal(b)
	require.NoError(err)
	require.Equal(`"aGVsbG8="`, string(bz))

	var decoded Base64String
	require.NoError(json.Unmarshal(bz, &decoded))
	require.True(b.Equal(decoded))

	require.NoError(json.Unmarshal([]byte(`""`), &decoded))
	require.Nil(decoded)

	require.Error(json.Unmarshal([]byte(`"not base64!"`), &decoded))
	require.Error(json.Unmarshal([]byte(`12`), &decoded))

	_, err = Base64StringFromString("%%%")
	require.Error(err)
}
