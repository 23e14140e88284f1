package handler

import (
	"net/http"

	"github.com/playhub/arena/internal/domain"
	"github.com/playhub/arena/internal/web"
)

// ServePage returns a handler writing the named embedded HTML page.
// Access control is applied by the router.
func ServePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := web.Page(name)
		if err != nil {
			RespondError(w, domain.ErrInternal("load page", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
