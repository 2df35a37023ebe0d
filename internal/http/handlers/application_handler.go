// Application HTTP handlers.
//
// Endpoints:
//   - POST   /applications              (create, Idempotency-Key aware)
//   - GET    /applications              (list: filters, sorting, pagination, weak ETag)
//   - GET    /applications/{id}         (fetch one)
//   - PATCH  /applications/{id}         (edit descriptive fields)
//   - PATCH  /applications/{id}/status  (state-machine transition)
//   - DELETE /applications/{id}         (hard delete)
//   - GET    /reminders                 (due follow-ups)
//
// Handlers are transport-thin: they validate input, call the services, and
// translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/applicationtrack/applicationtrack-backend/internal/ai"
	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/http/middleware"
	"github.com/applicationtrack/applicationtrack-backend/internal/repo"
	"github.com/applicationtrack/applicationtrack-backend/internal/services"
	"github.com/applicationtrack/applicationtrack-backend/internal/status"
	"github.com/applicationtrack/applicationtrack-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ApplicationService defines the application-record operations consumed by the
// HTTP layer. Implementations must honor the context for cancellation.
type ApplicationService interface {
	Create(ctx context.Context, userID string, in services.CreateInput) (*domain.Application, error)
	Get(ctx context.Context, userID, id string) (*domain.Application, error)
	List(ctx context.Context, userID string, f repo.Filter, srt services.Sort) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, userID, id string, target status.Status) (*domain.Application, error)
	UpdateFields(ctx context.Context, userID, id string, in services.UpdateInput) (*domain.Application, error)
	Delete(ctx context.Context, userID, id string) error
	Reminders(ctx context.Context, userID string, within time.Duration) ([]domain.Application, error)
}

// AuthService defines the account operations consumed by the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// DocumentService defines the document operations consumed by the HTTP layer.
type DocumentService interface {
	Attach(ctx context.Context, userID, applicationID, fileName, kind, url string, size int64) (*domain.Document, error)
	List(ctx context.Context, userID, applicationID string) ([]domain.Document, error)
	Delete(ctx context.Context, userID, documentID string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints and the services they depend on.
type Handlers struct {
	appSvc    ApplicationService
	authSvc   AuthService
	docSvc    DocumentService
	assistant ai.Assistant

	// IdemTTL bounds how long a stored idempotent result can be replayed.
	IdemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(appSvc ApplicationService, authSvc AuthService, docSvc DocumentService, assistant ai.Assistant) *Handlers {
	return &Handlers{
		appSvc:    appSvc,
		authSvc:   authSvc,
		docSvc:    docSvc,
		assistant: assistant,
		IdemTTL:   24 * time.Hour,
	}
}

// userID returns the authenticated user id set by the auth middleware.
func userID(c *gin.Context) string {
	return middleware.UserIDFrom(c)
}

// db exposes the gorm handle when the service is the concrete implementation.
// Used for the ETag pre-check and idempotency records; nil otherwise.
func (h *Handlers) db() *gorm.DB {
	if svc, ok := h.appSvc.(*services.ApplicationService); ok {
		return svc.DB
	}
	return nil
}

// serviceError maps a service-layer error onto the HTTP error envelope.
func serviceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	var te *services.InvalidTransitionError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, ve.Error())
	case errors.As(err, &te):
		fail(c, http.StatusConflict, ErrCodeInvalidTransition, te.Error())
	case errors.Is(err, services.ErrApplicationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "application not found")
	case errors.Is(err, services.ErrDocumentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// DTOs
//

// ContactPayload mirrors domain.Contact on the wire.
type ContactPayload struct {
	Name  string `json:"name" example:"Marie Dupont"`
	Email string `json:"email" example:"marie@acme.example"`
	Phone string `json:"phone" example:"+33 6 12 34 56 78"`
}

// CreateApplicationRequest is the JSON payload for creating an application.
// AppliedAt accepts "2006-01-02" or RFC 3339. Company and Description carry
// no binding tag: the service validates them so that every missing field is
// reported together in one validation_failed envelope.
type CreateApplicationRequest struct {
	Company      string          `json:"company" example:"Acme"`
	Description  string          `json:"description" example:"Backend engineer, Go"`
	AppliedAt    string          `json:"applied_at" binding:"required" example:"2026-03-15"`
	Notes        string          `json:"notes" example:"Referred by Sam"`
	Salary       string          `json:"salary" example:"55-60k"`
	Location     string          `json:"location" example:"Lyon"`
	ContractTags []string        `json:"contract_tags" example:"CDI,Remote"`
	Contact      *ContactPayload `json:"contact"`
	ReminderAt   string          `json:"reminder_at" example:"2026-03-29T09:00:00Z"`
	ReminderNote string          `json:"reminder_note" example:"Follow up with recruiter"`
}

// UpdateApplicationRequest is the JSON payload for a partial edit. Absent
// fields are left untouched; status never changes through this endpoint.
type UpdateApplicationRequest struct {
	Company       *string         `json:"company"`
	Description   *string         `json:"description"`
	AppliedAt     *string         `json:"applied_at"`
	Notes         *string         `json:"notes"`
	Salary        *string         `json:"salary"`
	Location      *string         `json:"location"`
	ContractTags  *[]string       `json:"contract_tags"`
	Contact       *ContactPayload `json:"contact"`
	ReminderAt    *string         `json:"reminder_at"`
	ReminderNote  *string         `json:"reminder_note"`
	ClearReminder bool            `json:"clear_reminder"`
}

// UpdateStatusRequest names the target status for a transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"interview_done"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListApplicationsResponse wraps a page of applications.
type ListApplicationsResponse struct {
	Applications []domain.Application `json:"applications"`
	Pagination   Pagination           `json:"pagination"`
}

//
// Helpers
//

// parseWhen accepts a bare date or a full RFC 3339 timestamp.
func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", s)
	}
	return t.UTC(), nil
}

// clampPagination bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// listQuery parses the shared filter and sort query parameters. It reports
// the first invalid parameter through fail() and returns ok=false.
func listQuery(c *gin.Context) (f repo.Filter, srt services.Sort, ok bool) {
	f.Search = strings.TrimSpace(c.Query("q"))
	f.Company = strings.TrimSpace(c.Query("company"))
	f.ContractType = strings.TrimSpace(c.Query("contract_type"))

	if raw := c.Query("status"); raw != "" {
		st, err := status.Parse(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, err.Error())
			return f, srt, false
		}
		f.Status = string(st)
	}
	if raw := c.Query("date_from"); raw != "" {
		t, err := parseWhen(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date_from: "+err.Error())
			return f, srt, false
		}
		f.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := parseWhen(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date_to: "+err.Error())
			return f, srt, false
		}
		f.DateTo = &t
	}

	by, okBy := services.ParseSortField(c.Query("sort_by"))
	if !okBy {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sort_by must be one of created_at, applied_at, company")
		return f, srt, false
	}
	order, okOrder := services.ParseSortOrder(c.Query("sort_order"))
	if !okOrder {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sort_order must be asc or desc")
		return f, srt, false
	}
	srt = services.Sort{By: by, Order: order}
	return f, srt, true
}

//
// Handlers
//

// CreateApplication godoc
// @ID          createApplication
// @Summary     Create a job application
// @Description Creates an application in the initial (pending) status. Supports safe retries via the Idempotency-Key header.
// @Tags        Applications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Safe-retry key"
// @Param       body             body    handlers.CreateApplicationRequest  true  "Application payload"
//
// @Success     201  {object}  domain.Application
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /applications [post]
func (h *Handlers) CreateApplication(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// Replay: return the previously created record instead of a duplicate.
	if middleware.IsReplay(c) {
		if key, okKey := middleware.GetIdempotencyKey(c); okKey {
			if db := h.db(); db != nil {
				if rec, err := repo.GetIdempotency(ctx, db, uid, key, time.Now().UTC()); err == nil {
					if app, err := h.appSvc.Get(ctx, uid, rec.ApplicationID); err == nil {
						ok(c, rec.Status, app)
						return
					}
				}
			}
		}
	}

	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	appliedAt, err := parseWhen(req.AppliedAt)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "applied_at: "+err.Error())
		return
	}

	in := services.CreateInput{
		Company:      req.Company,
		Description:  req.Description,
		AppliedAt:    appliedAt,
		Notes:        req.Notes,
		Salary:       req.Salary,
		Location:     req.Location,
		ContractTags: req.ContractTags,
		ReminderNote: req.ReminderNote,
	}
	if req.Contact != nil {
		in.Contact = domain.Contact{Name: req.Contact.Name, Email: req.Contact.Email, Phone: req.Contact.Phone}
	}
	if req.ReminderAt != "" {
		t, err := parseWhen(req.ReminderAt)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reminder_at: "+err.Error())
			return
		}
		in.ReminderAt = &t
	}

	app, err := h.appSvc.Create(ctx, uid, in)
	if err != nil {
		serviceError(c, err)
		return
	}

	// Store the result for future replays; duplicates are fine (the record
	// already points at an application).
	if key, okKey := middleware.GetIdempotencyKey(c); okKey {
		if db := h.db(); db != nil {
			if _, err := repo.CreateIdempotency(ctx, db, uid, key, app.ID, http.StatusCreated, h.IdemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
				middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency record")
			}
		}
	}

	ok(c, http.StatusCreated, app)
}

// ListApplications godoc
// @ID          listApplications
// @Summary     List applications (filtered, sorted, paginated)
// @Description Returns the user's applications. All filters combine with AND. Supports weak ETag via If-None-Match.
// @Tags        Applications
// @Produce     json
// @Security    BearerAuth
//
// @Param       q              query   string  false "Search in company and description"
// @Param       company        query   string  false "Company name filter"
// @Param       status         query   string  false "Status filter"  Enums(pending, rejected_after_review, interview_done, no_response, accepted, rejected_after_interview, no_response_after_interview)
// @Param       contract_type  query   string  false "Contract tag filter"  example(CDI)
// @Param       date_from      query   string  false "Inclusive lower bound on applied_at (YYYY-MM-DD)"
// @Param       date_to        query   string  false "Inclusive upper bound on applied_at (YYYY-MM-DD)"
// @Param       sort_by        query   string  false "Sort key"    Enums(created_at, applied_at, company) default(created_at)
// @Param       sort_order     query   string  false "Sort order"  Enums(asc, desc) default(desc)
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.ListApplicationsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /applications [get]
func (h *Handlers) ListApplications(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	f, srt, okQ := listQuery(c)
	if !okQ {
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort). The query string is folded in so a cached
	// filtered view never answers for a different filter.
	if db := h.db(); db != nil {
		if count, maxTS, err := repo.ApplicationsStats(ctx, db, uid); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"apps:%s:%d:%d:%s"`, uid, count, ts, c.Request.URL.RawQuery)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	apps, err := h.appSvc.List(ctx, uid, f, srt)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	total := int64(len(apps))
	start := (page - 1) * pageSize
	if start > len(apps) {
		start = len(apps)
	}
	end := start + pageSize
	if end > len(apps) {
		end = len(apps)
	}
	pageItems := apps[start:end]

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListApplicationsResponse{
		Applications: pageItems,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetApplication godoc
// @ID          getApplication
// @Summary     Fetch one application
// @Tags        Applications
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Application ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Application
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /applications/{id} [get]
func (h *Handlers) GetApplication(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}
	app, err := h.appSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, app)
}

// UpdateApplication godoc
// @ID          updateApplication
// @Summary     Edit application fields
// @Description Applies a partial edit to descriptive fields. Status cannot change here; use the status endpoint.
// @Tags        Applications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Application ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateApplicationRequest  true  "Fields to change"
//
// @Success     200  {object} domain.Application
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /applications/{id} [patch]
func (h *Handlers) UpdateApplication(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}

	var req UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.UpdateInput{
		Company:       req.Company,
		Description:   req.Description,
		Notes:         req.Notes,
		Salary:        req.Salary,
		Location:      req.Location,
		ContractTags:  req.ContractTags,
		ReminderNote:  req.ReminderNote,
		ClearReminder: req.ClearReminder,
	}
	if req.AppliedAt != nil {
		t, err := parseWhen(*req.AppliedAt)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "applied_at: "+err.Error())
			return
		}
		in.AppliedAt = &t
	}
	if req.ReminderAt != nil {
		t, err := parseWhen(*req.ReminderAt)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reminder_at: "+err.Error())
			return
		}
		in.ReminderAt = &t
	}
	if req.Contact != nil {
		in.ContactName = &req.Contact.Name
		in.ContactEmail = &req.Contact.Email
		in.ContactPhone = &req.Contact.Phone
	}

	app, err := h.appSvc.UpdateFields(c.Request.Context(), userID(c), id, in)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, app)
}

// UpdateApplicationStatus godoc
// @ID          updateApplicationStatus
// @Summary     Change application status
// @Description Moves the application through the status state machine. Illegal transitions answer 409 and leave the record untouched.
// @Tags        Applications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Application ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateStatusRequest  true  "Target status"
//
// @Success     200  {object} domain.Application
// @Failure     400  {object} handlers.ErrorResponse "Unknown status value"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Transition not allowed"
// @Router      /applications/{id}/status [patch]
func (h *Handlers) UpdateApplicationStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	target, err := status.Parse(req.Status)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, err.Error())
		return
	}

	app, err := h.appSvc.UpdateStatus(c.Request.Context(), userID(c), id, target)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, app)
}

// DeleteApplication godoc
// @ID          deleteApplication
// @Summary     Delete an application
// @Description Permanently removes the application and its attached documents. Deleting twice answers 404.
// @Tags        Applications
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Application ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /applications/{id} [delete]
func (h *Handlers) DeleteApplication(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "application id must be a UUID")
		return
	}
	if err := h.appSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}

// ListReminders godoc
// @ID          listReminders
// @Summary     List due follow-up reminders
// @Description Returns applications whose reminder falls due within the window (default 7 days), soonest first.
// @Tags        Applications
// @Produce     json
// @Security    BearerAuth
//
// @Param       days  query  int  false  "Window in days"  minimum(1) default(7)
//
// @Success     200  {array}  domain.Application
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /reminders [get]
func (h *Handlers) ListReminders(c *gin.Context) {
	days := utils.AtoiDefault(c.Query("days"), 7)
	if days < 1 {
		days = 1
	}
	apps, err := h.appSvc.Reminders(c.Request.Context(), userID(c), time.Duration(days)*24*time.Hour)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, apps)
}
