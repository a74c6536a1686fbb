package json

import (
	"net/http"

	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// MapperCodec is a JSON-RPC 2.0 codec translating method aliases, like
// "status", into service methods, like "relayer.Status".
type MapperCodec struct {
	aliases map[string]string
	codec   *json2.Codec
}

// NewMapperCodec returns a codec resolving the given aliases.
func NewMapperCodec(aliases map[string]string) *MapperCodec {
	return &MapperCodec{
		aliases: aliases,
		codec:   json2.NewCodec(),
	}
}

func (m *MapperCodec) NewRequest(request *http.Request) gorillarpc.CodecRequest {
	return &MapperCodecRequest{
		CodecRequest: m.codec.NewRequest(request).(*json2.CodecRequest),
		aliases:      m.aliases,
	}
}

type MapperCodecRequest struct {
	*json2.CodecRequest
	aliases map[string]string
}

func (m *MapperCodecRequest) Method() (string, error) {
	raw, err := m.CodecRequest.Method()
	if err != nil {
		return "", err
	}

	alias, ok := m.aliases[raw]
	if ok {
		return alias, nil
	}
	return raw, nil
}
