package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/internal/conv"
	"github.com/museumsvictoria/nodel-sub003/internal/ctxlog"
)

var errBadRequest = errors.New("bad request")

// ErrorResponse is the JSON body of failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Error: err.Error(), Code: strconv.Itoa(status)})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, handle.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, handle.ErrInvalidState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	logger := ctxlog.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Debug("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: strconv.Itoa(status)})
}

// readArg extracts the member argument from a {"arg": ...} JSON body or,
// failing that, from the "arg" query parameter. Query values that are not
// valid JSON are taken as plain strings.
func readArg(r *http.Request) (interface{}, error) {
	if r.Body != nil {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
		}
		if len(bytes.TrimSpace(data)) > 0 {
			var envelope struct {
				Arg json.RawMessage `json:"arg"`
			}
			if err := json.Unmarshal(data, &envelope); err != nil {
				return nil, fmt.Errorf("%w: decode body: %v", errBadRequest, err)
			}
			return conv.Decode(envelope.Arg)
		}
	}
	if values, ok := r.URL.Query()["arg"]; ok && len(values) > 0 {
		if v, err := conv.Decode([]byte(values[0])); err == nil {
			return v, nil
		}
		return values[0], nil
	}
	return nil, nil
}
