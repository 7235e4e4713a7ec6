// This file implements the ownership-scoped CRUD endpoints over job
// applications. Every handler takes the authenticated user id from the
// session gate; update and delete answer 404 both for ids that do not exist
// and for ids owned by someone else, so a caller can never probe another
// user's rows.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-application-tracker/internal/model"
	"github.com/iliyamo/job-application-tracker/internal/queue"
	"github.com/iliyamo/job-application-tracker/internal/repository"
)

// ApplicationStore is the subset of the application repository the handlers
// need. *repository.ApplicationRepo satisfies it.
type ApplicationStore interface {
	ListByOwner(ctx context.Context, userID uint64) ([]*model.Application, error)
	Create(ctx context.Context, a *model.Application) error
	Update(ctx context.Context, a *model.Application) error
	DeleteByIDAndOwner(ctx context.Context, id, userID uint64) error
}

// ApplicationHandler bundles the application endpoints' dependencies.
// Publish is optional; when set, lifecycle events are emitted best-effort
// after successful writes and publish failures never affect the response.
type ApplicationHandler struct {
	Apps    ApplicationStore
	Publish func(ctx context.Context, ev queue.ApplicationEvent) error
}

func NewApplicationHandler(apps ApplicationStore) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps}
}

// applicationReq is the JSON body accepted by create and update.
type applicationReq struct {
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	JobURL      string `json:"job_url"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

// validate trims the request and reports the missing required fields. The
// bool result is false when the status label is unknown.
func (r *applicationReq) validate() (missing []string, ok bool) {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.JobURL = strings.TrimSpace(r.JobURL)
	if r.CompanyName == "" {
		missing = append(missing, "company_name")
	}
	if r.JobTitle == "" {
		missing = append(missing, "job_title")
	}
	_, ok = model.ParseStatus(r.Status)
	return missing, ok
}

func (h *ApplicationHandler) emit(c echo.Context, eventType string, a *model.Application) {
	if h.Publish == nil {
		return
	}
	ev := queue.ApplicationEvent{
		Type:          eventType,
		ApplicationID: a.ID,
		UserID:        a.UserID,
		CompanyName:   a.CompanyName,
		JobTitle:      a.JobTitle,
		Status:        string(a.Status),
	}
	// Best-effort: the publisher logs its own failures.
	_ = h.Publish(c.Request().Context(), ev)
}

// List handles GET /api/applications and returns all applications owned by
// the current user, most recent first. An empty list is a valid result and
// serializes as [] rather than null.
func (h *ApplicationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Apps.ListByOwner(ctx, userID)
	if err != nil {
		log.Printf("applications: list for user %d failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load applications"})
	}
	if items == nil {
		items = []*model.Application{}
	}
	return c.JSON(http.StatusOK, items)
}

// Create handles POST /api/applications. Company name and job title are
// required; status defaults to Applied when absent.
func (h *ApplicationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req applicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	missing, statusOK := req.validate()
	if len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "missing required fields",
			"fields": missing,
		})
	}
	if !statusOK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	status, _ := model.ParseStatus(req.Status)

	app := &model.Application{
		UserID:      userID,
		CompanyName: req.CompanyName,
		JobTitle:    req.JobTitle,
		JobURL:      req.JobURL,
		Status:      status,
		Notes:       req.Notes,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Apps.Create(ctx, app); err != nil {
		log.Printf("applications: create for user %d failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create application"})
	}

	h.emit(c, queue.EventApplicationCreated, app)
	return c.JSON(http.StatusCreated, app)
}

// Update handles PUT /api/applications/:id. The fields are replaced
// wholesale with the caller-supplied values when the id exists and belongs
// to the caller; otherwise 404, without distinguishing the two cases.
func (h *ApplicationHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
	}
	var req applicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	missing, statusOK := req.validate()
	if len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "missing required fields",
			"fields": missing,
		})
	}
	if !statusOK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	status, _ := model.ParseStatus(req.Status)

	app := &model.Application{
		ID:          id,
		UserID:      userID,
		CompanyName: req.CompanyName,
		JobTitle:    req.JobTitle,
		JobURL:      req.JobURL,
		Status:      status,
		Notes:       req.Notes,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Apps.Update(ctx, app); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		}
		log.Printf("applications: update %d for user %d failed: %v", id, userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update application"})
	}

	h.emit(c, queue.EventApplicationUpdated, app)
	return c.JSON(http.StatusOK, app)
}

// Delete handles DELETE /api/applications/:id. A successful deletion returns
// 204 No Content; a repeated delete of the same id answers 404.
func (h *ApplicationHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Apps.DeleteByIDAndOwner(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		}
		log.Printf("applications: delete %d for user %d failed: %v", id, userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete application"})
	}

	h.emit(c, queue.EventApplicationDeleted, &model.Application{ID: id, UserID: userID})
	return c.NoContent(http.StatusNoContent)
}
