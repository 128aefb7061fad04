package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/repository"
	"agsavn-data/internal/service"
)

const alertsPrefix = "/api/v1/alerts"

// AlertHandler alert list, detail, lifecycle actions, admin update and export.
type AlertHandler struct {
	alertService service.AlertService
	logger       *zap.Logger
}

func NewAlertHandler(alertService service.AlertService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, logger: logger}
}

func (h *AlertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, rest := pathID(r.URL.Path, alertsPrefix)
	switch {
	case id == "" && r.Method == http.MethodGet:
		h.ListAlerts(w, r)
	case id == "export" && rest == "" && r.Method == http.MethodGet:
		h.ExportAlerts(w, r)
	case id == "" || id == "export" || strings.Contains(rest, "/"):
		w.WriteHeader(http.StatusNotFound)
	case !validUUID(id):
		writeJSON(w, http.StatusBadRequest, Fail("invalid alert id"))
	case rest == "" && r.Method == http.MethodGet:
		h.GetAlert(w, r, id)
	case rest == "" && (r.Method == http.MethodPut || r.Method == http.MethodPatch):
		h.UpdateAlert(w, r, id)
	case rest != "" && r.Method == http.MethodPost:
		action := domain.ActionType(rest)
		if !action.Valid() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.ApplyAction(w, r, id, action)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func alertFiltersFromQuery(r *http.Request) repository.AlertFilters {
	return repository.AlertFilters{
		Status:      domain.AlertStatus(strings.ToUpper(queryString(r, "status"))),
		Severity:    domain.AlertSeverity(strings.ToLower(queryString(r, "severity"))),
		IndicatorID: queryString(r, "indicator_id"),
		RegionID:    queryString(r, "region_id"),
		Search:      queryString(r, "search"),
		Ordering:    queryString(r, "ordering"),
	}
}

func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if !validIDParams(w, r, "indicator_id", "region_id") {
		return
	}
	resp, err := h.alertService.ListAlerts(r.Context(), service.ListAlertsRequest{
		Filters: alertFiltersFromQuery(r),
		Page:    parseInt(r.URL.Query().Get("page"), 1),
		Size:    parseInt(r.URL.Query().Get("page_size"), 20),
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(Page[alertSummaryJSON]{
		Items:      mapSlice(resp.Items, toAlertSummaryJSON),
		Pagination: resp.Pagination,
	}))
}

func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request, alertID string) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	detail, err := h.alertService.GetAlertDetail(r.Context(), alertID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toAlertDetailJSON(detail)))
}

type actionBody struct {
	Comment string `json:"comment"`
}

// ApplyAction POST /api/v1/alerts/{id}/{approve|reject|resolve|comment}
func (h *AlertHandler) ApplyAction(w http.ResponseWriter, r *http.Request, alertID string, action domain.ActionType) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body actionBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	alert, err := h.alertService.ApplyAction(r.Context(), service.ApplyActionRequest{
		AlertID: alertID,
		UserID:  id.UserID,
		Action:  action,
		Comment: body.Comment,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toAlertJSON(alert)))
}

type updateAlertBody struct {
	Severity    *string `json:"severity"`
	Status      *string `json:"status"`
	HandledBy   *string `json:"handled_by"`
	Description *string `json:"description"`
}

func (h *AlertHandler) UpdateAlert(w http.ResponseWriter, r *http.Request, alertID string) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body updateAlertBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	req := service.UpdateAlertRequest{
		AlertID:         alertID,
		CurrentUserID:   id.UserID,
		CurrentUserRole: id.Role,
		HandledBy:       body.HandledBy,
		Description:     body.Description,
	}
	if body.Severity != nil {
		sev := domain.AlertSeverity(strings.ToLower(*body.Severity))
		req.Severity = &sev
	}
	if body.Status != nil {
		st := domain.AlertStatus(strings.ToUpper(*body.Status))
		req.Status = &st
	}

	alert, err := h.alertService.UpdateAlert(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toAlertJSON(alert)))
}

func (h *AlertHandler) ExportAlerts(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if !validIDParams(w, r, "indicator_id", "region_id") {
		return
	}
	items, err := h.alertService.ExportAlerts(r.Context(), alertFiltersFromQuery(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	data, err := GenerateAlertExport(items)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=alerts-export.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
