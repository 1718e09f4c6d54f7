package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/tsuri/internal/app"
	"github.com/okian/tsuri/internal/domain/model"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, req service.RankRequest) (RankResponse, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank?tab=&region=&near=1&lat=&lng= requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	req, err := parseRankRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Rank(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseRankRequest(r *http.Request) (service.RankRequest, error) {
	q := r.URL.Query()
	req := service.RankRequest{
		Tab:    q.Get("tab"),
		Region: q.Get("region"),
	}
	near := strings.ToLower(strings.TrimSpace(q.Get("near")))
	switch near {
	case "", "0", "false":
	case "1", "true":
		req.NearMe = true
	default:
		return req, fmt.Errorf("invalid near %q", q.Get("near"))
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		return req, nil
	}
	if latStr == "" || lngStr == "" {
		return req, errors.New("lat and lng must be given together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return req, fmt.Errorf("invalid lat %q", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return req, fmt.Errorf("invalid lng %q", lngStr)
	}
	c := model.Coordinate{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return req, fmt.Errorf("coordinate (%v, %v) out of range", lat, lng)
	}
	req.Origin = &c
	return req, nil
}
