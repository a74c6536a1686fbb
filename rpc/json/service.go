package json

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/ed25519"

	"github.com/rollkit/sequencer-relayer/da"
	"github.com/rollkit/sequencer-relayer/log"
	"github.com/rollkit/sequencer-relayer/relayer"
	"github.com/rollkit/sequencer-relayer/store"
	"github.com/rollkit/sequencer-relayer/types"
)

const serviceName = "relayer"

func getServiceName(method string) string {
	return serviceName + "." + method
}

// Relayer is the part of the relayer service exposed over RPC.
type Relayer interface {
	IsRunning() bool
	Status() relayer.Status
}

// DAClient reads sequencer blocks back from the DA layer.
type DAClient interface {
	GetBlocks(ctx context.Context, height uint64, expectedSigner crypto.PubKey) ([]*types.SequencerBlock, error)
	CheckBlockAvailability(ctx context.Context, height uint64) (*da.ResultCheckBlock, error)
	GetLatestHeight(ctx context.Context) (uint64, error)
}

// Submissions gives access to the saved relayer progress.
type Submissions interface {
	LoadSubmission(height uint64) (*store.Submission, error)
}

// GetHTTPHandler returns handler serving the relayer JSON-RPC API, over POST
// requests on "/" and as URI requests like "/status" or "/get_blocks?height=1".
func GetHTTPHandler(r Relayer, dac DAClient, subs Submissions, logger log.Logger) (http.Handler, error) {
	srv := &service{
		relayer:     r,
		da:          dac,
		submissions: subs,
	}
	aliases := map[string]string{
		"health":             getServiceName("Health"),
		"status":             getServiceName("Status"),
		"get_blocks":         getServiceName("GetBlocks"),
		"check_availability": getServiceName("CheckAvailability"),
		"latest_da_height":   getServiceName("LatestDAHeight"),
		"submission":         getServiceName("Submission"),
	}

	rpcServer := gorillarpc.NewServer()
	rpcServer.RegisterCodec(NewMapperCodec(aliases), "application/json")
	if err := rpcServer.RegisterService(srv, serviceName); err != nil {
		return nil, err
	}

	methods, err := serviceMethods(srv, aliases)
	if err != nil {
		return nil, err
	}
	return newHandler(rpcServer, methods, logger), nil
}

type service struct {
	relayer     Relayer
	da          DAClient
	submissions Submissions
}

func (s *service) Health(req *http.Request, args *HealthArgs, reply *HealthResult) error {
	reply.Running = s.relayer.IsRunning()
	if !reply.Running {
		return errors.New("relayer is not running")
	}
	return nil
}

func (s *service) Status(req *http.Request, args *StatusArgs, reply *relayer.Status) error {
	*reply = s.relayer.Status()
	return nil
}

func (s *service) GetBlocks(req *http.Request, args *GetBlocksArgs, reply *GetBlocksResult) error {
	var signer crypto.PubKey
	if len(args.Signer) != 0 {
		if len(args.Signer) != ed25519.PubKeySize {
			return fmt.Errorf("invalid signer: expected %d bytes, got %d", ed25519.PubKeySize, len(args.Signer))
		}
		signer = ed25519.PubKey(args.Signer)
	}
	blocks, err := s.da.GetBlocks(req.Context(), args.Height, signer)
	if err != nil {
		return err
	}
	reply.Blocks = blocks
	return nil
}

func (s *service) CheckAvailability(req *http.Request, args *CheckAvailabilityArgs, reply *da.ResultCheckBlock) error {
	res, err := s.da.CheckBlockAvailability(req.Context(), args.Height)
	if err != nil {
		return err
	}
	*reply = *res
	return nil
}

func (s *service) LatestDAHeight(req *http.Request, args *LatestDAHeightArgs, reply *LatestDAHeightResult) error {
	height, err := s.da.GetLatestHeight(req.Context())
	if err != nil {
		return err
	}
	reply.Height = height
	return nil
}

func (s *service) Submission(req *http.Request, args *SubmissionArgs, reply *store.Submission) error {
	sub, err := s.submissions.LoadSubmission(args.Height)
	if err != nil {
		return err
	}
	*reply = *sub
	return nil
}

// method describes a service method callable from URI requests.
type method struct {
	m         reflect.Value
	argsType  reflect.Type
	replyType reflect.Type
}

var (
	typeOfRequest = reflect.TypeOf((*http.Request)(nil))
	typeOfError   = reflect.TypeOf((*error)(nil)).Elem()
)

// serviceMethods maps aliases to the service methods they resolve to.
func serviceMethods(srv *service, aliases map[string]string) (map[string]*method, error) {
	v := reflect.ValueOf(srv)
	methods := make(map[string]*method, len(aliases))
	for alias, full := range aliases {
		name := full[len(serviceName)+1:]
		m := v.MethodByName(name)
		if !m.IsValid() {
			return nil, fmt.Errorf("no method %s", full)
		}
		mt := m.Type()
		if mt.NumIn() != 3 || mt.In(0) != typeOfRequest || mt.NumOut() != 1 || mt.Out(0) != typeOfError {
			return nil, fmt.Errorf("method %s has unsupported signature", full)
		}
		methods[alias] = &method{
			m:         m,
			argsType:  mt.In(1).Elem(),
			replyType: mt.In(2).Elem(),
		}
	}
	return methods, nil
}
