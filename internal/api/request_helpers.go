package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/launchpad/internal/domain"
)

// getPathGameID returns the {id} path parameter.
func getPathGameID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return "", domain.ErrEmptyGameID
	}
	return id, nil
}

// requireQuery returns the named query values, or the first missing name.
func requireQuery(r *http.Request, names ...string) (map[string]string, string) {
	q := r.URL.Query()
	values := make(map[string]string, len(names))
	for _, name := range names {
		v := strings.TrimSpace(q.Get(name))
		if v == "" {
			return nil, name
		}
		values[name] = v
	}
	return values, ""
}
