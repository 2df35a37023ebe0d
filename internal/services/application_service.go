// Package services – ApplicationService
//
// This file implements the ApplicationService, which owns the lifecycle of
// job-application records: creation with required-field validation, filtered
// and sorted listing, partial field edits, state-machine-guarded status
// changes, hard deletion, and reminder lookup. It is the single place that
// enforces record invariants; the repository below it is persistence only and
// the handlers above it are transport only.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/repo"
	"github.com/applicationtrack/applicationtrack-backend/internal/status"
)

// statusTransitions counts accepted status changes by (from, to) pair.
// Rejected transitions are not counted; they never mutate state.
var statusTransitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "application_status_transitions_total",
		Help: "Total number of accepted application status transitions.",
	},
	[]string{"from", "to"},
)

func init() {
	prometheus.MustRegister(statusTransitions)
}

// ApplicationRepo defines the repository contract required by
// ApplicationService. Implementations are responsible for persistence of
// application aggregates.
type ApplicationRepo interface {
	// Create inserts a new application row.
	Create(ctx context.Context, db *gorm.DB, app *domain.Application) error

	// Get fetches an application by ID ensuring it belongs to the user.
	Get(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Application, error)

	// List returns the user's applications matching the filter, in insertion order.
	List(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) ([]domain.Application, error)

	// Update applies column updates to an application owned by the user.
	Update(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error

	// Delete removes an application permanently.
	Delete(ctx context.Context, db *gorm.DB, id, userID string) error

	// Reminders returns applications with a reminder due at or before until.
	Reminders(ctx context.Context, db *gorm.DB, userID string, until time.Time) ([]domain.Application, error)
}

// SortField selects the key for list ordering.
type SortField string

// SortOrder selects the direction for list ordering.
type SortOrder string

const (
	SortByCreatedAt SortField = "created_at"
	SortByAppliedAt SortField = "applied_at"
	SortByCompany   SortField = "company"

	OrderAscending  SortOrder = "asc"
	OrderDescending SortOrder = "desc"
)

// Sort configures list ordering. Zero values fall back to the defaults:
// created_at descending.
type Sort struct {
	By    SortField
	Order SortOrder
}

// ParseSortField validates a raw sort_by query value; empty selects the default.
func ParseSortField(s string) (SortField, bool) {
	switch SortField(s) {
	case "", SortByCreatedAt:
		return SortByCreatedAt, true
	case SortByAppliedAt, SortByCompany:
		return SortField(s), true
	}
	return "", false
}

// ParseSortOrder validates a raw sort_order query value; empty selects the default.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "", OrderDescending:
		return OrderDescending, true
	case OrderAscending:
		return OrderAscending, true
	}
	return "", false
}

// CreateInput carries the caller-supplied fields for a new application.
// Company, Description, and AppliedAt are required; everything else is
// optional.
type CreateInput struct {
	Company      string
	Description  string
	AppliedAt    time.Time
	Notes        string
	Salary       string
	Location     string
	ContractTags []string
	Contact      domain.Contact
	ReminderAt   *time.Time
	ReminderNote string
}

// UpdateInput carries a partial edit: nil fields are left untouched. Status
// is deliberately absent — status only changes through UpdateStatus.
type UpdateInput struct {
	Company      *string
	Description  *string
	AppliedAt    *time.Time
	Notes        *string
	Salary       *string
	Location     *string
	ContractTags *[]string
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
	ReminderAt   *time.Time
	ReminderNote *string
	// ClearReminder removes a scheduled reminder; it wins over ReminderAt.
	ClearReminder bool
}

// ApplicationService provides the application-record use cases. All
// operations take the owning user id explicitly; there is no ambient
// "current user".
type ApplicationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the application repository used by this service.
	Repo ApplicationRepo
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(db *gorm.DB, r ApplicationRepo) *ApplicationService {
	return &ApplicationService{DB: db, Repo: r}
}

// Create validates and persists a new application owned by userID. Company
// and description must be non-empty after trimming; every missing field is
// reported together in a single *ValidationError. New records always start
// in the initial status.
func (s *ApplicationService) Create(ctx context.Context, userID string, in CreateInput) (*domain.Application, error) {
	company := strings.TrimSpace(in.Company)
	description := strings.TrimSpace(in.Description)

	var missing []string
	if company == "" {
		missing = append(missing, "company")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if in.AppliedAt.IsZero() {
		missing = append(missing, "applied_at")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:           uuid.NewString(),
		UserID:       userID,
		Company:      company,
		Description:  description,
		AppliedAt:    in.AppliedAt,
		Status:       string(status.Initial),
		Notes:        in.Notes,
		Salary:       in.Salary,
		Location:     in.Location,
		ContractTags: in.ContractTags,
		Contact:      in.Contact,
		ReminderAt:   in.ReminderAt,
		ReminderNote: in.ReminderNote,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, s.DB, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Get returns one application owned by userID, or ErrApplicationNotFound.
func (s *ApplicationService) Get(ctx context.Context, userID, id string) (*domain.Application, error) {
	app, err := s.Repo.Get(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// List returns the user's applications matching f, ordered by srt. Filtering
// happens in the store; ordering is a stable in-memory sort so that ties keep
// insertion order regardless of the sort key. An empty result is a success.
func (s *ApplicationService) List(ctx context.Context, userID string, f repo.Filter, srt Sort) ([]domain.Application, error) {
	apps, err := s.Repo.List(ctx, s.DB, userID, f)
	if err != nil {
		return nil, err
	}

	by := srt.By
	if by == "" {
		by = SortByCreatedAt
	}
	order := srt.Order
	if order == "" {
		order = OrderDescending
	}

	var less func(a, b *domain.Application) bool
	switch by {
	case SortByAppliedAt:
		less = func(a, b *domain.Application) bool { return a.AppliedAt.Before(b.AppliedAt) }
	case SortByCompany:
		less = func(a, b *domain.Application) bool {
			return strings.ToLower(a.Company) < strings.ToLower(b.Company)
		}
	default:
		less = func(a, b *domain.Application) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}

	sort.SliceStable(apps, func(i, j int) bool {
		if order == OrderDescending {
			return less(&apps[j], &apps[i])
		}
		return less(&apps[i], &apps[j])
	})
	return apps, nil
}

// UpdateStatus moves an application to target if the state machine allows it.
// On success the new status and a refreshed updated_at are persisted in one
// update; on an illegal transition the record is left untouched and an
// *InvalidTransitionError naming the pair is returned.
func (s *ApplicationService) UpdateStatus(ctx context.Context, userID, id string, target status.Status) (*domain.Application, error) {
	app, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	current := status.Status(app.Status)
	if !status.CanTransition(current, target) {
		return nil, &InvalidTransitionError{From: current, To: target}
	}

	now := time.Now().UTC()
	err = s.Repo.Update(ctx, s.DB, id, userID, map[string]any{
		"status":     string(target),
		"updated_at": now,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	statusTransitions.WithLabelValues(string(current), string(target)).Inc()

	app.Status = string(target)
	app.UpdatedAt = now
	return app, nil
}

// UpdateFields applies a partial edit to the descriptive fields. Company and
// description are re-validated for non-emptiness when included; status is
// never touched here. updated_at is refreshed on every edit.
func (s *ApplicationService) UpdateFields(ctx context.Context, userID, id string, in UpdateInput) (*domain.Application, error) {
	updates := map[string]any{}
	var missing []string

	if in.Company != nil {
		v := strings.TrimSpace(*in.Company)
		if v == "" {
			missing = append(missing, "company")
		} else {
			updates["company"] = v
		}
	}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		if v == "" {
			missing = append(missing, "description")
		} else {
			updates["description"] = v
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	if in.AppliedAt != nil {
		updates["applied_at"] = *in.AppliedAt
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.Salary != nil {
		updates["salary"] = *in.Salary
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.ContractTags != nil {
		// Map-based updates bypass the struct field serializer, so encode the
		// tag set the same way the column stores it.
		b, err := json.Marshal(*in.ContractTags)
		if err != nil {
			return nil, err
		}
		updates["contract_tags"] = string(b)
	}
	if in.ContactName != nil {
		updates["contact_name"] = *in.ContactName
	}
	if in.ContactEmail != nil {
		updates["contact_email"] = *in.ContactEmail
	}
	if in.ContactPhone != nil {
		updates["contact_phone"] = *in.ContactPhone
	}
	if in.ClearReminder {
		updates["reminder_at"] = nil
		updates["reminder_note"] = ""
	} else {
		if in.ReminderAt != nil {
			updates["reminder_at"] = *in.ReminderAt
		}
		if in.ReminderNote != nil {
			updates["reminder_note"] = *in.ReminderNote
		}
	}

	updates["updated_at"] = time.Now().UTC()

	if err := s.Repo.Update(ctx, s.DB, id, userID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Delete removes an application permanently. A second delete of the same id
// returns ErrApplicationNotFound ("already gone"), never silent success.
func (s *ApplicationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Repo.Delete(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationNotFound
		}
		return err
	}
	return nil
}

// Reminders returns the user's applications whose reminder falls due within
// the given window from now, soonest first.
func (s *ApplicationService) Reminders(ctx context.Context, userID string, within time.Duration) ([]domain.Application, error) {
	return s.Repo.Reminders(ctx, s.DB, userID, time.Now().UTC().Add(within))
}
