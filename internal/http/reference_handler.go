package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/service"
)

const (
	regionsPrefix    = "/api/v1/regions"
	categoriesPrefix = "/api/v1/categories"
)

// ReferenceHandler serves regions and categories.
type ReferenceHandler struct {
	referenceService service.ReferenceService
	logger           *zap.Logger
}

func NewReferenceHandler(referenceService service.ReferenceService, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService, logger: logger}
}

type referenceBody struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description"`
}

// ServeRegions /api/v1/regions[/{id}]
func (h *ReferenceHandler) ServeRegions(w http.ResponseWriter, r *http.Request) {
	id, rest := pathID(r.URL.Path, regionsPrefix)
	if rest != "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if id != "" && !validUUID(id) {
		writeJSON(w, http.StatusBadRequest, Fail("invalid region id"))
		return
	}
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	switch {
	case id == "" && r.Method == http.MethodGet:
		items, err := h.referenceService.ListRegions(ctx, queryString(r, "search"))
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(mapSlice(items, toRegionJSON)))

	case id != "" && r.Method == http.MethodGet:
		region, err := h.referenceService.GetRegion(ctx, id)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(toRegionJSON(region)))

	case id == "" && r.Method == http.MethodPost, id != "" && (r.Method == http.MethodPut || r.Method == http.MethodPatch):
		var body referenceBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		in := domain.Region{RegionID: id, Name: body.Name, Code: body.Code, Description: body.Description}
		var (
			region *domain.Region
			err    error
		)
		status := http.StatusOK
		if id == "" {
			region, err = h.referenceService.CreateRegion(ctx, ident.Role, in)
			status = http.StatusCreated
		} else {
			region, err = h.referenceService.UpdateRegion(ctx, ident.Role, in)
		}
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeJSON(w, status, Ok(toRegionJSON(region)))

	case id != "" && r.Method == http.MethodDelete:
		if err := h.referenceService.DeleteRegion(ctx, ident.Role, id); err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ServeCategories /api/v1/categories[/{id}]
func (h *ReferenceHandler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	id, rest := pathID(r.URL.Path, categoriesPrefix)
	if rest != "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if id != "" && !validUUID(id) {
		writeJSON(w, http.StatusBadRequest, Fail("invalid category id"))
		return
	}
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	switch {
	case id == "" && r.Method == http.MethodGet:
		items, err := h.referenceService.ListCategories(ctx)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(mapSlice(items, toCategoryJSON)))

	case id != "" && r.Method == http.MethodGet:
		category, err := h.referenceService.GetCategory(ctx, id)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(toCategoryJSON(category)))

	case id == "" && r.Method == http.MethodPost, id != "" && (r.Method == http.MethodPut || r.Method == http.MethodPatch):
		var body referenceBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		in := domain.Category{
			CategoryID:  id,
			Name:        body.Name,
			Code:        domain.CategoryCode(strings.ToLower(strings.TrimSpace(body.Code))),
			Description: body.Description,
		}
		var (
			category *domain.Category
			err      error
		)
		status := http.StatusOK
		if id == "" {
			category, err = h.referenceService.CreateCategory(ctx, ident.Role, in)
			status = http.StatusCreated
		} else {
			category, err = h.referenceService.UpdateCategory(ctx, ident.Role, in)
		}
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeJSON(w, status, Ok(toCategoryJSON(category)))

	case id != "" && r.Method == http.MethodDelete:
		if err := h.referenceService.DeleteCategory(ctx, ident.Role, id); err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
