package api

import (
	"context"
	"net/http"
	"unicode/utf8"
)

// MaxQueryLength bounds the search query in runes.
const MaxQueryLength = 100

// SearchDependencies defines the interface for search operations.
type SearchDependencies interface {
	Search(ctx context.Context, query string) (SearchResponse, error)
}

// SearchHandler handles search requests.
type SearchHandler struct {
	deps SearchDependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps SearchDependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

// HandleSearch handles GET /search?q= requests. A blank query yields an
// empty result, not an error.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query().Get("q")
	if utf8.RuneCountInString(q) > MaxQueryLength {
		writeError(w, http.StatusBadRequest, "query_too_long", NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.Search(r.Context(), q)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
