package cnrc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	cases := []struct {
		name          string
		options       []Option
		expectedError error
	}{
		{"without options", nil, nil},
		{"with timeout", []Option{WithTimeout(1 * time.Second)}, nil},
		{"with retries", []Option{WithRetries(3, 10 * time.Millisecond)}, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client, err := NewClient("", c.options...)
			assert.ErrorIs(t, err, c.expectedError)
			if c.expectedError != nil {
				assert.Nil(t, client)
			} else {
				assert.NotNil(t, client)
			}
		})
	}
}

// fakeNode serves canned celestia-node responses and records submitted requests.
type fakeNode struct {
	mtx       sync.Mutex
	submitted []SubmitPFDRequest
}

func (f *fakeNode) requests() []SubmitPFDRequest {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return append([]SubmitPFDRequest(nil), f.submitted...)
}

func (f *fakeNode) handler(t *testing.T) http.Handler {
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(v))
	}

	r := mux.NewRouter()
	r.HandleFunc("/submit_pfd", func(w http.ResponseWriter, r *http.Request) {
		var req SubmitPFDRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mtx.Lock()
		f.submitted = append(f.submitted, req)
		f.mtx.Unlock()
		if req.GasLimit == 0 {
			writeJSON(w, http.StatusBadRequest, "gas limit must be positive")
			return
		}
		writeJSON(w, http.StatusOK, TxResponse{Height: 42, TxHash: "ABCD"})
	}).Methods(http.MethodPost)
	r.HandleFunc("/namespaced_shares/{ns}/height/{height}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["height"] == "404" {
			http.Error(w, "header not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, NamespacedSharesResponse{
			Shares: [][]byte{[]byte(mux.Vars(r)["ns"])},
			Height: 7,
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/namespaced_data/{ns}/height/{height}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, NamespacedDataResponse{
			Data:   [][]byte{[]byte("blob-1"), []byte("blob-2")},
			Height: 7,
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/head", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"header":{"chain_id":"private","height":"1234","time":"2022-11-01T10:00:00Z"}}`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/header/{height}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"header":{"chain_id":"private","height":"` + mux.Vars(r)["height"] + `"}}`))
	}).Methods(http.MethodGet)
	return r
}

func newTestClient(t *testing.T) (*Client, *fakeNode) {
	node := &fakeNode{}
	srv := httptest.NewServer(node.handler(t))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithTimeout(5*time.Second))
	require.NoError(t, err)
	return client, node
}

func TestSubmitPFD(t *testing.T) {
	require := require.New(t)
	client, node := newTestClient(t)

	nID := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	txRes, err := client.SubmitPFD(context.TODO(), nID, []byte("random data"), 2000, 100000)
	require.NoError(err)
	require.NotNil(txRes)
	require.EqualValues(42, txRes.Height)
	require.Equal("ABCD", txRes.TxHash)

	submitted := node.requests()
	require.Len(submitted, 1)
	require.Equal(hex.EncodeToString(nID[:]), submitted[0].NamespaceID)
	require.Equal(hex.EncodeToString([]byte("random data")), submitted[0].Data)
	require.EqualValues(2000, submitted[0].Fee)
	require.EqualValues(100000, submitted[0].GasLimit)

	txRes, err = client.SubmitPFD(context.TODO(), nID, []byte("random data"), 2000, 0)
	require.EqualError(err, "gas limit must be positive")
	require.Nil(txRes)
}

func TestNamespacedShares(t *testing.T) {
	client, _ := newTestClient(t)

	shares, err := client.NamespacedShares(context.TODO(), [8]byte{0, 0, 0, 0, 0, 0, 0, 1}, 357889)
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("0000000000000001")}, shares)

	shares, err = client.NamespacedShares(context.TODO(), [8]byte{0, 0, 0, 0, 0, 0, 0, 1}, 404)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "header not found")
	assert.Nil(t, shares)
}

func TestNamespacedData(t *testing.T) {
	client, _ := newTestClient(t)

	data, err := client.NamespacedData(context.TODO(), [8]byte{1}, 10)
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("blob-1"), []byte("blob-2")}, data)
}

func TestHead(t *testing.T) {
	require := require.New(t)
	client, _ := newTestClient(t)

	head, err := client.Head(context.TODO())
	require.NoError(err)
	require.EqualValues(1234, head.RawHeader.Height)
	require.Equal("private", head.RawHeader.ChainID)
	require.Equal(time.Date(2022, 11, 1, 10, 0, 0, 0, time.UTC), head.RawHeader.Time.UTC())

	header, err := client.Header(context.TODO(), 77)
	require.NoError(err)
	require.EqualValues(77, header.RawHeader.Height)
}

func TestUnreachableNode(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1", WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = client.Head(context.TODO())
	assert.Error(t, err)
}
