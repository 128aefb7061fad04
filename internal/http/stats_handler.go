package httpapi

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"agsavn-data/internal/service"
)

// StatsHandler alert statistics and the user activity trail.
type StatsHandler struct {
	statsService    service.StatsService
	activityService service.ActivityService
	logger          *zap.Logger
}

func NewStatsHandler(statsService service.StatsService, activityService service.ActivityService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{statsService: statsService, activityService: activityService, logger: logger}
}

// GetAlertStats GET /api/v1/stats/alerts?days=&region_id=&category_id=
func (h *StatsHandler) GetAlertStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	days := 0
	if s := queryString(r, "days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("days must be an integer"))
			return
		}
		days = n
	}
	if !validIDParams(w, r, "region_id", "category_id") {
		return
	}

	stats, err := h.statsService.GetAlertStats(r.Context(), service.AlertStatsRequest{
		Days:       days,
		RegionID:   queryString(r, "region_id"),
		CategoryID: queryString(r, "category_id"),
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

// ListActivity GET /api/v1/user/activity?user_id=&all=&page=&page_size=
func (h *StatsHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	all, _ := strconv.ParseBool(queryString(r, "all"))

	resp, err := h.activityService.ListActivity(r.Context(), service.ListActivityRequest{
		CurrentUserID:   id.UserID,
		CurrentUserRole: id.Role,
		UserID:          queryString(r, "user_id"),
		All:             all,
		Page:            parseInt(r.URL.Query().Get("page"), 1),
		Size:            parseInt(r.URL.Query().Get("page_size"), 20),
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(Page[activityJSON]{
		Items:      mapSlice(resp.Items, toActivityJSON),
		Pagination: resp.Pagination,
	}))
}
