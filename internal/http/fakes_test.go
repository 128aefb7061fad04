package httpapi

import (
	"context"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/repository"
	"agsavn-data/internal/service"
)

type fakeAlertService struct {
	service.AlertService
	applyFn  func(req service.ApplyActionRequest) (*domain.Alert, error)
	updateFn func(req service.UpdateAlertRequest) (*domain.Alert, error)
	listFn   func(req service.ListAlertsRequest) (*service.ListAlertsResponse, error)
	exportFn func(f repository.AlertFilters) ([]*domain.AlertSummary, error)
	detailFn func(id string) (*domain.AlertDetail, error)
}

func (f *fakeAlertService) ApplyAction(_ context.Context, req service.ApplyActionRequest) (*domain.Alert, error) {
	return f.applyFn(req)
}

func (f *fakeAlertService) UpdateAlert(_ context.Context, req service.UpdateAlertRequest) (*domain.Alert, error) {
	return f.updateFn(req)
}

func (f *fakeAlertService) ListAlerts(_ context.Context, req service.ListAlertsRequest) (*service.ListAlertsResponse, error) {
	return f.listFn(req)
}

func (f *fakeAlertService) ExportAlerts(_ context.Context, filters repository.AlertFilters) ([]*domain.AlertSummary, error) {
	return f.exportFn(filters)
}

func (f *fakeAlertService) GetAlertDetail(_ context.Context, id string) (*domain.AlertDetail, error) {
	return f.detailFn(id)
}

type fakeMeasurementService struct {
	service.MeasurementService
	createFn func(req service.CreateMeasurementRequest) (*service.CreateMeasurementResponse, error)
	listFn   func(req service.ListMeasurementsRequest) (*service.ListMeasurementsResponse, error)
	deleteFn func(req service.DeleteMeasurementRequest) error
}

func (f *fakeMeasurementService) CreateMeasurement(_ context.Context, req service.CreateMeasurementRequest) (*service.CreateMeasurementResponse, error) {
	return f.createFn(req)
}

func (f *fakeMeasurementService) ListMeasurements(_ context.Context, req service.ListMeasurementsRequest) (*service.ListMeasurementsResponse, error) {
	return f.listFn(req)
}

func (f *fakeMeasurementService) DeleteMeasurement(_ context.Context, req service.DeleteMeasurementRequest) error {
	return f.deleteFn(req)
}

type fakeReferenceService struct {
	service.ReferenceService
	createRegionFn func(role string, r domain.Region) (*domain.Region, error)
	listRegionsFn  func(search string) ([]*domain.Region, error)
}

func (f *fakeReferenceService) CreateRegion(_ context.Context, role string, r domain.Region) (*domain.Region, error) {
	return f.createRegionFn(role, r)
}

func (f *fakeReferenceService) ListRegions(_ context.Context, search string) ([]*domain.Region, error) {
	return f.listRegionsFn(search)
}
