package mock

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	mux2 "github.com/gorilla/mux"

	mockda "github.com/rollkit/sequencer-relayer/da/mock"
	"github.com/rollkit/sequencer-relayer/libs/cnrc"
	"github.com/rollkit/sequencer-relayer/log"
	"github.com/rollkit/sequencer-relayer/store"
	"github.com/rollkit/sequencer-relayer/types"
)

// Server mocks celestia-node HTTP API.
type Server struct {
	mock      *mockda.BlobClient
	blockTime time.Duration
	server    *http.Server
	logger    log.Logger
}

// NewServer creates new instance of Server.
func NewServer(blockTime time.Duration, logger log.Logger) *Server {
	return &Server{
		mock:      mockda.NewBlobClient(store.NewDefaultInMemoryKVStore(), blockTime, logger),
		blockTime: blockTime,
		logger:    logger,
	}
}

// Start starts HTTP server with given listener.
func (s *Server) Start(listener net.Listener) error {
	err := s.mock.Start()
	if err != nil {
		return err
	}
	s.server = &http.Server{
		Handler:           s.getHandler(),
		ReadHeaderTimeout: time.Second,
	}
	go func() {
		err := s.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("listener", "error", err)
		}
	}()
	return nil
}

// Stop shuts down the Server.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if s.server != nil {
		_ = s.server.Shutdown(ctx)
	}
	_ = s.mock.Stop()
}

func (s *Server) getHandler() http.Handler {
	mux := mux2.NewRouter()
	mux.HandleFunc("/submit_pfd", s.submit).Methods(http.MethodPost)
	mux.HandleFunc("/namespaced_shares/{namespace}/height/{height}", s.shares).Methods(http.MethodGet)
	mux.HandleFunc("/namespaced_data/{namespace}/height/{height}", s.data).Methods(http.MethodGet)
	mux.HandleFunc("/head", s.head).Methods(http.MethodGet)
	mux.HandleFunc("/header/{height}", s.header).Methods(http.MethodGet)

	return mux
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	req := cnrc.SubmitPFDRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ns, err := types.ParseNamespace(req.NamespaceID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	blob, err := hex.DecodeString(req.Data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	height, err := s.mock.SubmitBlob(r.Context(), ns, blob)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := json.Marshal(cnrc.TxResponse{
		Height:    int64(height),
		GasWanted: int64(req.GasLimit),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeResponse(w, resp)
}

func (s *Server) shares(w http.ResponseWriter, r *http.Request) {
	ns, height, err := parseNamespacedRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	shares, err := s.mock.NamespacedShares(r.Context(), ns, height)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := json.Marshal(cnrc.NamespacedSharesResponse{
		Shares: shares,
		Height: height,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeResponse(w, resp)
}

func (s *Server) data(w http.ResponseWriter, r *http.Request) {
	ns, height, err := parseNamespacedRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := s.mock.NamespacedData(r.Context(), ns, height)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := json.Marshal(cnrc.NamespacedDataResponse{
		Data:   data,
		Height: height,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeResponse(w, resp)
}

func (s *Server) head(w http.ResponseWriter, r *http.Request) {
	height, err := s.mock.LatestHeight(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHeader(w, height)
}

func (s *Server) header(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.ParseUint(mux2.Vars(r)["height"], 10, 64)
	if err != nil {
		s.writeError(w, err)
		return
	}
	latest, err := s.mock.LatestHeight(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if height > latest {
		s.writeError(w, errors.New("header not found"))
		return
	}
	s.writeHeader(w, height)
}

func (s *Server) writeHeader(w http.ResponseWriter, height uint64) {
	resp, err := json.Marshal(cnrc.ExtendedHeader{
		RawHeader: cnrc.RawHeader{
			ChainID: "mock",
			Height:  height,
			Time:    time.Now().UTC(),
		},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, resp)
}

func parseNamespacedRequest(r *http.Request) (types.Namespace, uint64, error) {
	vars := mux2.Vars(r)
	ns, err := types.ParseNamespace(vars["namespace"])
	if err != nil {
		return ns, 0, err
	}
	height, err := strconv.ParseUint(vars["height"], 10, 64)
	if err != nil {
		return ns, 0, err
	}
	return ns, height, nil
}

func (s *Server) writeResponse(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(payload)
	if err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	resp, jerr := json.Marshal(err.Error())
	if jerr != nil {
		s.logger.Error("failed to serialize error message", "error", jerr)
	}
	_, werr := w.Write(resp)
	if werr != nil {
		s.logger.Error("failed to write response", "error", werr)
	}
}
