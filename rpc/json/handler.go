package json

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	"github.com/gorilla/rpc/v2/json2"

	"github.com/rollkit/sequencer-relayer/log"
)

type handler struct {
	mux    *http.ServeMux
	logger log.Logger
}

func newHandler(rpcServer http.Handler, methods map[string]*method, logger log.Logger) *handler {
	mux := http.NewServeMux()
	h := &handler{
		mux:    mux,
		logger: logger,
	}

	mux.Handle("/", rpcServer)
	for name, method := range methods {
		logger.Debug("registering method", "name", name)
		mux.HandleFunc("/"+name, h.newHandler(method))
	}

	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *handler) newHandler(methodSpec *method) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		args := reflect.New(methodSpec.argsType)
		values, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			h.encodeAndWriteResponse(w, nil, err, int(json2.E_PARSE))
			return
		}
		for i := 0; i < methodSpec.argsType.NumField(); i++ {
			field := methodSpec.argsType.Field(i)
			name := field.Tag.Get("json")
			if !values.Has(name) {
				// byte slices are optional
				if field.Type.Kind() == reflect.Slice {
					continue
				}
				h.encodeAndWriteResponse(w, nil, fmt.Errorf("missing param '%s'", name), int(json2.E_INVALID_REQ))
				return
			}
			rawVal := values.Get(name)
			var err error
			switch field.Type.Kind() {
			case reflect.Bool:
				err = setBoolParam(rawVal, &args, i)
			case reflect.Uint64:
				err = setUintParam(rawVal, &args, i)
			case reflect.String:
				args.Elem().Field(i).SetString(rawVal)
			case reflect.Slice:
				// []byte is a reflect.Slice of reflect.Uint8's
				if field.Type.Elem().Kind() == reflect.Uint8 {
					err = setByteSliceParam(rawVal, &args, i)
				} else {
					err = errors.New("unknown type")
				}
			default:
				err = errors.New("unknown type")
			}
			if err != nil {
				err = fmt.Errorf("failed to parse param '%s': %w", name, err)
				h.encodeAndWriteResponse(w, nil, err, int(json2.E_PARSE))
				return
			}
		}
		reply := reflect.New(methodSpec.replyType)
		rets := methodSpec.m.Call([]reflect.Value{
			reflect.ValueOf(r),
			args,
			reply,
		})

		// Extract the result to error if needed.
		statusCode := http.StatusOK
		errInter := rets[0].Interface()
		if errInter != nil {
			statusCode = int(json2.E_INTERNAL)
			err = errInter.(error)
		}

		h.encodeAndWriteResponse(w, reply.Interface(), err, statusCode)
	}
}

func (h *handler) encodeAndWriteResponse(w http.ResponseWriter, result interface{}, errResult error, statusCode int) {
	// Prevents Internet Explorer from MIME-sniffing a response away
	// from the declared content-type
	w.Header().Set("x-content-type-options", "nosniff")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	resp := response{
		Version: "2.0",
		ID:      []byte("-1"),
	}

	if errResult != nil {
		resp.Error = &json2.Error{Code: json2.ErrorCode(statusCode), Message: errResult.Error()}
	} else {
		resp.Result = result
	}

	encoder := json.NewEncoder(w)
	err := encoder.Encode(resp)
	if err != nil {
		h.logger.Error("failed to encode RPC response", "error", err)
	}
}

func setBoolParam(rawVal string, args *reflect.Value, i int) error {
	v, err := strconv.ParseBool(rawVal)
	if err != nil {
		return err
	}
	args.Elem().Field(i).SetBool(v)
	return nil
}

func setUintParam(rawVal string, args *reflect.Value, i int) error {
	v, err := strconv.ParseUint(rawVal, 10, 64)
	if err != nil {
		return err
	}
	args.Elem().Field(i).SetUint(v)
	return nil
}

func setByteSliceParam(rawVal string, args *reflect.Value, i int) error {
	b, err := hex.DecodeString(rawVal)
	if err != nil {
		return err
	}
	args.Elem().Field(i).SetBytes(b)
	return nil
}
