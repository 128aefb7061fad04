package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/models"
	"agsavn-data/internal/repository"
	"agsavn-data/internal/service"
)

const (
	testAlertID = "2f1c3a7e-1d4b-4c55-9f0e-7a1b2c3d4e5f"
	testUserID  = "5a4b3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d"
)

type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func doRequest(t *testing.T, h http.Handler, method, path, userID, role, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestApplyAction_Approve(t *testing.T) {
	var got service.ApplyActionRequest
	svc := &fakeAlertService{applyFn: func(req service.ApplyActionRequest) (*domain.Alert, error) {
		got = req
		handler := req.UserID
		return &domain.Alert{
			AlertID:   req.AlertID,
			Severity:  domain.SeverityCritical,
			Status:    domain.AlertStatusConfirmed,
			HandledBy: &handler,
		}, nil
	}}
	h := NewAlertHandler(svc, zap.NewNop())

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/alerts/"+testAlertID+"/approve", testUserID, "", `{"comment":"checked"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, testAlertID, got.AlertID)
	assert.Equal(t, testUserID, got.UserID)
	assert.Equal(t, domain.ActionApprove, got.Action)
	assert.Equal(t, "checked", got.Comment)

	var alert alertJSON
	require.NoError(t, json.Unmarshal(env.Result, &alert))
	assert.Equal(t, "CONFIRMED", alert.Status)
	require.NotNil(t, alert.HandledBy)
	assert.Equal(t, testUserID, *alert.HandledBy)
}

func TestApplyAction_InvalidTransitionIs400(t *testing.T) {
	svc := &fakeAlertService{applyFn: func(req service.ApplyActionRequest) (*domain.Alert, error) {
		return nil, &domain.InvalidTransitionError{Action: req.Action, Current: domain.AlertStatusConfirmed}
	}}
	h := NewAlertHandler(svc, zap.NewNop())

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/alerts/"+testAlertID+"/reject", testUserID, "", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ResultError, env.Code)
	assert.Equal(t, "Alert is already confirmed", env.Message)
}

func TestApplyAction_MissingIdentity(t *testing.T) {
	svc := &fakeAlertService{applyFn: func(service.ApplyActionRequest) (*domain.Alert, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	h := NewAlertHandler(svc, zap.NewNop())

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/alerts/"+testAlertID+"/resolve", "", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "user ID is required", env.Message)
}

func TestApplyAction_MalformedIdentity(t *testing.T) {
	svc := &fakeAlertService{applyFn: func(service.ApplyActionRequest) (*domain.Alert, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	h := NewAlertHandler(svc, zap.NewNop())

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/alerts/"+testAlertID+"/resolve", "u1", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid user ID", env.Message)
}

func TestApplyAction_Routing(t *testing.T) {
	h := NewAlertHandler(&fakeAlertService{}, zap.NewNop())

	rec, env := doRequest(t, h, http.MethodPost, "/api/v1/alerts/not-a-uuid/approve", testUserID, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid alert id", env.Message)

	rec, _ = doRequest(t, h, http.MethodPost, "/api/v1/alerts/"+testAlertID+"/escalate", testUserID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doRequest(t, h, http.MethodDelete, "/api/v1/alerts/"+testAlertID, testUserID, "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestApplyAction_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", domain.NotFoundf("alert %s not found", testAlertID), http.StatusNotFound, "not found: alert " + testAlertID + " not found"},
		{"validation", domain.Validationf("comment too long"), http.StatusBadRequest, "validation error: comment too long"},
		{"persistence", domain.Persistence("create alert action", errors.New("conn reset")), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAlertService{applyFn: func(service.ApplyActionRequest) (*domain.Alert, error) {
				return nil, tc.err
			}}
			h := NewAlertHandler(svc, zap.NewNop())

			rec, env := doRequest(t, h, http.MethodPost, "/api/v1/alerts/"+testAlertID+"/comment", testUserID, "", `{"comment":"x"}`)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, env.Message)
		})
	}
}

func TestUpdateAlert_PassesRoleAndFields(t *testing.T) {
	var got service.UpdateAlertRequest
	svc := &fakeAlertService{updateFn: func(req service.UpdateAlertRequest) (*domain.Alert, error) {
		got = req
		if req.CurrentUserRole != string(domain.RoleAdmin) {
			return nil, domain.ErrForbidden
		}
		return &domain.Alert{AlertID: req.AlertID, Severity: *req.Severity, Status: *req.Status}, nil
	}}
	h := NewAlertHandler(svc, zap.NewNop())

	rec, _ := doRequest(t, h, http.MethodPatch, "/api/v1/alerts/"+testAlertID, testUserID, "user", `{"severity":"MEDIUM","status":"pending"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := doRequest(t, h, http.MethodPatch, "/api/v1/alerts/"+testAlertID, testUserID, "admin", `{"severity":"MEDIUM","status":"pending"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Severity)
	assert.Equal(t, domain.SeverityMedium, *got.Severity)
	assert.Equal(t, domain.AlertStatusPending, *got.Status)

	var alert alertJSON
	require.NoError(t, json.Unmarshal(env.Result, &alert))
	assert.Equal(t, "medium", alert.Severity)
}

func TestListAlerts_ParsesFilters(t *testing.T) {
	var got service.ListAlertsRequest
	svc := &fakeAlertService{listFn: func(req service.ListAlertsRequest) (*service.ListAlertsResponse, error) {
		got = req
		return &service.ListAlertsResponse{
			Items:      []*domain.AlertSummary{{Alert: domain.Alert{AlertID: testAlertID, Status: domain.AlertStatusPending}, RegionName: "North"}},
			Pagination: models.NewPagination(req.Page, req.Size, 1, req.Filters.Ordering),
		}, nil
	}}
	h := NewAlertHandler(svc, zap.NewNop())

	rec, env := doRequest(t, h, http.MethodGet, "/api/v1/alerts?status=pending&severity=Critical&search=rain&ordering=-severity&page=2&page_size=5", testUserID, "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.AlertStatusPending, got.Filters.Status)
	assert.Equal(t, domain.SeverityCritical, got.Filters.Severity)
	assert.Equal(t, "rain", got.Filters.Search)
	assert.Equal(t, "-severity", got.Filters.Ordering)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Size)

	var page Page[alertSummaryJSON]
	require.NoError(t, json.Unmarshal(env.Result, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "North", page.Items[0].RegionName)
	assert.Equal(t, -1, page.Pagination.Direction)
}

func TestListAlerts_RejectsMalformedFilterIDs(t *testing.T) {
	svc := &fakeAlertService{
		listFn: func(service.ListAlertsRequest) (*service.ListAlertsResponse, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
		exportFn: func(repository.AlertFilters) ([]*domain.AlertSummary, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := NewAlertHandler(svc, zap.NewNop())

	cases := map[string]string{
		"list by indicator":   "/api/v1/alerts?indicator_id=rainfall",
		"list by region":      "/api/v1/alerts?region_id=42",
		"export by indicator": "/api/v1/alerts/export?indicator_id=rainfall",
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			rec, env := doRequest(t, h, http.MethodGet, path, testUserID, "", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, env.Message, "invalid ")
		})
	}
}

func TestExportAlerts_WritesWorkbook(t *testing.T) {
	unit := "mm"
	handler := "u9"
	desc := "Rainfall value 5 below low threshold 10 mm"
	svc := &fakeAlertService{exportFn: func(repository.AlertFilters) ([]*domain.AlertSummary, error) {
		return []*domain.AlertSummary{{
			Alert: domain.Alert{
				AlertID:        testAlertID,
				Severity:       domain.SeverityCritical,
				Status:         domain.AlertStatusPending,
				ThresholdValue: 10,
				ThresholdType:  domain.ThresholdLow,
				Description:    &desc,
				HandledBy:      &handler,
				CreatedAt:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
			},
			IndicatorName: "Rainfall",
			Unit:          &unit,
			RegionName:    "North",
			CategoryName:  "Agriculture",
			Value:         5,
			Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		}}, nil
	}}
	h := NewAlertHandler(svc, zap.NewNop())

	rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/alerts/export", testUserID, "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "alerts-export.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(alertExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, AlertExportHeader, rows[0])
	assert.Equal(t, testAlertID, rows[1][0])
	assert.Equal(t, "Rainfall", rows[1][2])
	assert.Equal(t, "2024-05-01", rows[1][5])
	assert.Equal(t, "low", rows[1][8])
	assert.Equal(t, desc, rows[1][13])
}
