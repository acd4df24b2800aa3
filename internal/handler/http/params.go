package http

import (
	"net/http"

	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// pathID reads a UUID route parameter, writing 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	id := chi.URLParam(r, name)
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid "+label, nil)
		return "", false
	}
	return id, true
}
