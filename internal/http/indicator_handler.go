package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/repository"
	"agsavn-data/internal/service"
)

const indicatorsPrefix = "/api/v1/indicators"

type IndicatorHandler struct {
	indicatorService service.IndicatorService
	logger           *zap.Logger
}

func NewIndicatorHandler(indicatorService service.IndicatorService, logger *zap.Logger) *IndicatorHandler {
	return &IndicatorHandler{indicatorService: indicatorService, logger: logger}
}

func (h *IndicatorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, rest := pathID(r.URL.Path, indicatorsPrefix)
	switch {
	case rest != "":
		w.WriteHeader(http.StatusNotFound)
	case id == "" && r.Method == http.MethodGet:
		h.ListIndicators(w, r)
	case id == "" && r.Method == http.MethodPost:
		h.SaveIndicator(w, r, "")
	case id == "":
		w.WriteHeader(http.StatusMethodNotAllowed)
	case !validUUID(id):
		writeJSON(w, http.StatusBadRequest, Fail("invalid indicator id"))
	case r.Method == http.MethodGet:
		h.GetIndicator(w, r, id)
	case r.Method == http.MethodPut || r.Method == http.MethodPatch:
		h.SaveIndicator(w, r, id)
	case r.Method == http.MethodDelete:
		h.DeleteIndicator(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *IndicatorHandler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	items, err := h.indicatorService.ListIndicators(r.Context(), repository.IndicatorFilters{
		CategoryID: queryString(r, "category_id"),
		AlertType:  domain.AlertType(strings.ToUpper(queryString(r, "alert_type"))),
		Search:     queryString(r, "search"),
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(mapSlice(items, toIndicatorJSON)))
}

func (h *IndicatorHandler) GetIndicator(w http.ResponseWriter, r *http.Request, indicatorID string) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	ind, err := h.indicatorService.GetIndicator(r.Context(), indicatorID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toIndicatorJSON(ind)))
}

type indicatorBody struct {
	Name               string   `json:"name"`
	Description        *string  `json:"description"`
	CategoryID         string   `json:"category_id"`
	Unit               *string  `json:"unit"`
	DocumentationLink  *string  `json:"documentation_link"`
	AlertThresholdLow  *float64 `json:"alert_threshold_low"`
	AlertThresholdHigh *float64 `json:"alert_threshold_high"`
	AlertType          string   `json:"alert_type"`
}

// SaveIndicator creates when indicatorID is empty, otherwise replaces.
func (h *IndicatorHandler) SaveIndicator(w http.ResponseWriter, r *http.Request, indicatorID string) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body indicatorBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	req := service.SaveIndicatorRequest{
		CurrentUserID:   id.UserID,
		CurrentUserRole: id.Role,
		Indicator: domain.Indicator{
			IndicatorID:       indicatorID,
			Name:              body.Name,
			Description:       body.Description,
			CategoryID:        body.CategoryID,
			Unit:              body.Unit,
			DocumentationLink: body.DocumentationLink,
			ThresholdLow:      body.AlertThresholdLow,
			ThresholdHigh:     body.AlertThresholdHigh,
			AlertType:         domain.AlertType(strings.ToUpper(body.AlertType)),
		},
	}

	var (
		ind *domain.Indicator
		err error
	)
	status := http.StatusOK
	if indicatorID == "" {
		ind, err = h.indicatorService.CreateIndicator(r.Context(), req)
		status = http.StatusCreated
	} else {
		ind, err = h.indicatorService.UpdateIndicator(r.Context(), req)
	}
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, status, Ok(toIndicatorJSON(ind)))
}

func (h *IndicatorHandler) DeleteIndicator(w http.ResponseWriter, r *http.Request, indicatorID string) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	err := h.indicatorService.DeleteIndicator(r.Context(), service.DeleteRequest{
		ID:              indicatorID,
		CurrentUserID:   id.UserID,
		CurrentUserRole: id.Role,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
