package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/shandysiswandi/devlink/internal/pkg/validator"
)

const (
	msgInternal         = "Internal server error"
	msgSuccess          = "request has been successfully"
	defaultRetryAfter   = 1
	headerRetryAfter    = "Retry-After"
	headerContentType   = "Content-Type"
	contentTypeJSONUTF8 = "application/json; charset=utf-8"
)

type errorResponse struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

type (
	statusCoder interface{ StatusCode() int }
	messager    interface{ Message() string }
	metaer      interface{ Meta() map[string]any }
	errorSetter interface{ SetError(error) }
)

// retryable reports whether the caller may repeat the request unchanged.
func retryable(code goerror.Code) bool {
	return code == goerror.CodeUnavailable || code == goerror.CodeTooManyRequest
}

func encodeError(w http.ResponseWriter, err error, retryAfter int) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		writeJSON(w, errorResponse{Message: msgInternal}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg()}

	var verr validator.V10ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Error = verr.Values()
	case len(gerr.Fields()) > 0:
		resp.Error = gerr.Fields()
	}

	if retryable(gerr.Code()) && retryAfter > 0 {
		w.Header().Set(headerRetryAfter, strconv.Itoa(retryAfter))
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func encodeSuccess(w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(statusCoder); ok {
		code = sc.StatusCode()
	}

	if resp == nil || code == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out := successResponse{Message: msgSuccess, Data: resp}
	if m, ok := resp.(messager); ok {
		out.Message = m.Message()
	}
	if m, ok := resp.(metaer); ok {
		out.Meta = m.Meta()
	}

	writeJSON(w, out, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set(headerContentType, contentTypeJSONUTF8)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
