package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/repository"
	"agsavn-data/internal/service"
)

const measurementsPrefix = "/api/v1/measurements"

// MeasurementHandler measurement CRUD plus the by-region and by-indicator views.
type MeasurementHandler struct {
	measurementService service.MeasurementService
	logger             *zap.Logger
}

func NewMeasurementHandler(measurementService service.MeasurementService, logger *zap.Logger) *MeasurementHandler {
	return &MeasurementHandler{measurementService: measurementService, logger: logger}
}

func (h *MeasurementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, rest := pathID(r.URL.Path, measurementsPrefix)
	switch {
	case rest != "":
		w.WriteHeader(http.StatusNotFound)
	case id == "" && r.Method == http.MethodGet:
		h.ListMeasurements(w, r, "")
	case id == "" && r.Method == http.MethodPost:
		h.CreateMeasurement(w, r)
	case id == "by-region" && r.Method == http.MethodGet:
		h.ListMeasurements(w, r, "region_id")
	case id == "by-indicator" && r.Method == http.MethodGet:
		h.ListMeasurements(w, r, "indicator_id")
	case id == "" || id == "by-region" || id == "by-indicator":
		w.WriteHeader(http.StatusMethodNotAllowed)
	case !validUUID(id):
		writeJSON(w, http.StatusBadRequest, Fail("invalid measurement id"))
	case r.Method == http.MethodGet:
		h.GetMeasurement(w, r, id)
	case r.Method == http.MethodPut || r.Method == http.MethodPatch:
		h.UpdateMeasurement(w, r, id)
	case r.Method == http.MethodDelete:
		h.DeleteMeasurement(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ListMeasurements requiredParam, when set, must be present in the query.
func (h *MeasurementHandler) ListMeasurements(w http.ResponseWriter, r *http.Request, requiredParam string) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if requiredParam != "" && queryString(r, requiredParam) == "" {
		writeJSON(w, http.StatusBadRequest, Fail(requiredParam+" parameter is required"))
		return
	}
	if !validIDParams(w, r, "indicator_id", "region_id") {
		return
	}

	filters := repository.MeasurementFilters{
		IndicatorID: queryString(r, "indicator_id"),
		RegionID:    queryString(r, "region_id"),
		Search:      queryString(r, "search"),
		Ordering:    queryString(r, "ordering"),
	}
	for key, dst := range map[string]**time.Time{"date_from": &filters.DateFrom, "date_to": &filters.DateTo} {
		if s := queryString(r, key); s != "" {
			t, err := parseDate(s)
			if err != nil {
				writeError(w, h.logger, r, err)
				return
			}
			*dst = &t
		}
	}

	resp, err := h.measurementService.ListMeasurements(r.Context(), service.ListMeasurementsRequest{
		Filters: filters,
		Page:    parseInt(r.URL.Query().Get("page"), 1),
		Size:    parseInt(r.URL.Query().Get("page_size"), 20),
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(Page[measurementJSON]{
		Items:      mapSlice(resp.Items, toMeasurementJSON),
		Pagination: resp.Pagination,
	}))
}

type createMeasurementBody struct {
	IndicatorID string   `json:"indicator_id"`
	RegionID    string   `json:"region_id"`
	Value       *float64 `json:"value"`
	Date        string   `json:"date"`
	Source      *string  `json:"source"`
}

type createMeasurementResult struct {
	measurementJSON
	Alert *alertJSON `json:"alert"`
}

func (h *MeasurementHandler) CreateMeasurement(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body createMeasurementBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if body.Value == nil {
		writeError(w, h.logger, r, domain.Validationf("value is required"))
		return
	}
	for key, v := range map[string]string{"indicator_id": body.IndicatorID, "region_id": body.RegionID} {
		if v != "" && !validUUID(v) {
			writeError(w, h.logger, r, domain.Validationf("invalid %s", key))
			return
		}
	}
	date, err := parseDate(body.Date)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	resp, err := h.measurementService.CreateMeasurement(r.Context(), service.CreateMeasurementRequest{
		CurrentUserID: id.UserID,
		Channel:       service.ChannelHTTP,
		IndicatorID:   body.IndicatorID,
		RegionID:      body.RegionID,
		Value:         *body.Value,
		Date:          date,
		Source:        body.Source,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	out := createMeasurementResult{measurementJSON: toMeasurementJSON(resp.Measurement)}
	if resp.Alert != nil {
		a := toAlertJSON(resp.Alert)
		out.Alert = &a
	}
	writeJSON(w, http.StatusCreated, Ok(out))
}

func (h *MeasurementHandler) GetMeasurement(w http.ResponseWriter, r *http.Request, measurementID string) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	m, err := h.measurementService.GetMeasurement(r.Context(), measurementID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toMeasurementJSON(m)))
}

type updateMeasurementBody struct {
	Value  *float64 `json:"value"`
	Date   *string  `json:"date"`
	Source *string  `json:"source"`
}

func (h *MeasurementHandler) UpdateMeasurement(w http.ResponseWriter, r *http.Request, measurementID string) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body updateMeasurementBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	req := service.UpdateMeasurementRequest{
		MeasurementID:   measurementID,
		CurrentUserID:   id.UserID,
		CurrentUserRole: id.Role,
		Value:           body.Value,
		Source:          body.Source,
	}
	if body.Date != nil {
		d, err := parseDate(*body.Date)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		req.Date = &d
	}

	m, err := h.measurementService.UpdateMeasurement(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toMeasurementJSON(m)))
}

func (h *MeasurementHandler) DeleteMeasurement(w http.ResponseWriter, r *http.Request, measurementID string) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	err := h.measurementService.DeleteMeasurement(r.Context(), service.DeleteMeasurementRequest{
		MeasurementID:   measurementID,
		CurrentUserID:   id.UserID,
		CurrentUserRole: id.Role,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
