package router

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
)

// maxBodyBytes bounds JSON request bodies; verification payloads are tiny.
const maxBodyBytes = 16 * 1024

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// GetParam reads a path parameter from the request context (as stored by httprouter).
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetParamInt reads a path parameter as a base-10 int.
func (r *Request) GetParamInt(key string) (int, error) {
	value, err := strconv.Atoi(r.GetParam(key))
	if err != nil {
		return 0, goerror.NewInvalidFormat("param must integer value")
	}
	return value, nil
}

// DecodeBody decodes the JSON body into dst, rejecting unknown fields and
// trailing data. An empty body leaves dst untouched when allowEmpty is set.
func (r *Request) DecodeBody(dst any, allowEmpty ...bool) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		if len(allowEmpty) > 0 && allowEmpty[0] {
			return nil
		}
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if err == io.EOF && len(allowEmpty) > 0 && allowEmpty[0] {
			return nil
		}
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return goerror.NewInvalidFormat()
	}

	return nil
}
