package mock

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	mux2 "github.com/gorilla/mux"
	tmtypes "github.com/tendermint/tendermint/types"

	"github.com/rollkit/sequencer-relayer/log"
	"github.com/rollkit/sequencer-relayer/types"
)

// Server mocks the block queries of the sequencer node REST gateway.
//
// Blocks are produced on demand with ProduceBlock. Their hashes are computed
// with the upstream implementation, so they verify.
type Server struct {
	mtx    sync.RWMutex
	blocks []*types.BlockResponse

	server *http.Server
	logger log.Logger
}

// NewServer creates new instance of Server.
func NewServer(logger log.Logger) *Server {
	return &Server{
		logger: logger,
	}
}

// Start starts HTTP server with given listener.
func (s *Server) Start(listener net.Listener) error {
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
}

// ProduceBlock appends a block with txs to the chain and returns it.
func (s *Server) ProduceBlock(txs [][]byte) *types.BlockResponse {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	height := int64(len(s.blocks) + 1)
	resp := types.GetRandomBlockResponse(height, txs)
	if height > 1 {
		prev := s.blocks[height-2].BlockID
		h, err := resp.Block.Header.ToTendermint()
		if err != nil {
			panic(err)
		}
		h.LastBlockID = tmtypes.BlockID{
			Hash: prev.Hash.Bytes(),
			PartSetHeader: tmtypes.PartSetHeader{
				Total: prev.PartSetHeader.Total,
				Hash:  prev.PartSetHeader.Hash.Bytes(),
			},
		}
		resp.Block.Header = types.HeaderFromTendermint(h)
		resp.BlockID.Hash = types.Base64String(h.Hash())
	}
	s.blocks = append(s.blocks, resp)
	return resp
}

// SetBlock replaces the block served at height, which must already exist.
func (s *Server) SetBlock(height uint64, resp *types.BlockResponse) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.blocks[height-1] = resp
}

// Height returns the height of the newest block.
func (s *Server) Height() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return uint64(len(s.blocks))
}

func (s *Server) getHandler() http.Handler {
	mux := mux2.NewRouter()
	mux.HandleFunc("/cosmos/base/tendermint/v1beta1/blocks/latest", s.latest).Methods(http.MethodGet)
	mux.HandleFunc("/cosmos/base/tendermint/v1beta1/blocks/{height}", s.block).Methods(http.MethodGet)
	return mux
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if len(s.blocks) == 0 {
		s.writeError(w, http.StatusNotFound, "no blocks yet")
		return
	}
	s.writeResponse(w, s.blocks[len(s.blocks)-1])
}

func (s *Server) block(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.ParseUint(mux2.Vars(r)["height"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if height == 0 || height > uint64(len(s.blocks)) {
		s.writeError(w, http.StatusBadRequest, "requested block height is bigger then the chain length")
		return
	}
	s.writeResponse(w, s.blocks[height-1])
}

func (s *Server) writeResponse(w http.ResponseWriter, payload interface{}) {
	resp, err := json.Marshal(payload)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	resp, jerr := json.Marshal(map[string]interface{}{
		"code":    2,
		"message": msg,
		"details": []interface{}{},
	})
	if jerr != nil {
		s.logger.Error("failed to serialize error message", "error", jerr)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(resp); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
