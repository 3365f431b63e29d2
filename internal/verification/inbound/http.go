package inbound

import (
	"net/http"

	"github.com/shandysiswandi/devlink/internal/pkg/router"
)

// RegisterHTTPEndpoint mounts the session routes. limit guards the calls that
// allocate a session or reach the auth service.
func RegisterHTTPEndpoint(r *router.Router, uc uc, limit router.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	var guarded []router.Middleware
	if limit != nil {
		guarded = append(guarded, limit)
	}

	r.POST("/api/v1/verification/sessions", end.Open, guarded...)
	r.GET("/api/v1/verification/sessions/:id", end.Get)
	r.DELETE("/api/v1/verification/sessions/:id", end.Close)

	r.PUT("/api/v1/verification/sessions/:id/digits/:index", end.SetDigit)
	r.POST("/api/v1/verification/sessions/:id/backspace", end.Backspace)
	r.POST("/api/v1/verification/sessions/:id/paste", end.Paste)
	r.POST("/api/v1/verification/sessions/:id/resend", end.Resend, guarded...)
	r.POST("/api/v1/verification/sessions/:id/mount", end.Mount, guarded...)

	r.GETRaw("/api/v1/verification/sessions/:id/stream", http.HandlerFunc(end.Stream))
}
