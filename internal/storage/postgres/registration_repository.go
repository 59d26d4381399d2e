package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokeshloki65/college-event/internal/domain"
)

// RegistrationRepository persists registrations. A partial unique index on
// (event_id, subject_id) WHERE status <> 'cancelled' is what actually
// enforces the one-active-registration rule; Create just translates its
// violation into the domain error.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const registrationColumns = `
number, event_id, subject_id, kind, team_name, team_members, status,
contact_email, contact_phone, special_requirements,
payment_amount, payment_reference, payment_screenshot_ref, payment_status,
admin_notes, reviewed_by, reviewed_at, submitted_at, version`

func (r *RegistrationRepository) Create(ctx context.Context, reg domain.Registration) error {
	members, err := json.Marshal(reg.TeamMembers)
	if err != nil {
		return fmt.Errorf("encode team members: %w", err)
	}
	if reg.TeamMembers == nil {
		members = []byte("[]")
	}

	const stmt = `
INSERT INTO registrations (` + registrationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err = exec(ctx, r.pool, stmt,
		reg.Number,
		reg.EventID,
		reg.SubjectID,
		reg.Kind,
		nullIfEmpty(reg.TeamName),
		members,
		reg.Status,
		reg.ContactEmail,
		reg.ContactPhone,
		reg.SpecialRequirements,
		reg.Payment.Amount,
		reg.Payment.Reference,
		reg.Payment.ScreenshotRef,
		reg.Payment.Status,
		reg.AdminNotes,
		nullIfEmpty(reg.ReviewedBy),
		reg.ReviewedAt,
		reg.SubmittedAt,
		reg.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindActive returns the non-cancelled registration for (event, subject),
// or nil when there is none. Used as the duplicate pre-check; the unique
// index closes the remaining race.
func (r *RegistrationRepository) FindActive(ctx context.Context, eventID, subjectID string) (*domain.Registration, error) {
	const q = `
SELECT ` + registrationColumns + `
FROM registrations
WHERE event_id = $1 AND subject_id = $2 AND status <> 'cancelled'`

	reg, err := scanRegistration(queryRow(ctx, r.pool, q, eventID, subjectID))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active registration: %w", err)
	}
	return &reg, nil
}

func (r *RegistrationRepository) Get(ctx context.Context, number string) (domain.Registration, error) {
	const q = `
SELECT ` + registrationColumns + `
FROM registrations
WHERE number = $1`

	reg, err := scanRegistration(queryRow(ctx, r.pool, q, number))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Registration{}, domain.ErrRegistrationNotFound
		}
		return domain.Registration{}, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// UpdateStatus applies a lifecycle transition guarded by an optimistic
// version check: the write only lands if nobody transitioned the
// registration since it was read.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, number string, expectedVersion int, upd domain.StatusUpdate) error {
	const stmt = `
UPDATE registrations
SET status = $3,
    reviewed_by = COALESCE(NULLIF($4, ''), reviewed_by),
    reviewed_at = COALESCE($5, reviewed_at),
    admin_notes = CASE WHEN $4 <> '' THEN $6 ELSE admin_notes END,
    version = version + 1
WHERE number = $1 AND version = $2`

	tag, err := exec(ctx, r.pool, stmt, number, expectedVersion, upd.Status, upd.ReviewedBy, upd.ReviewedAt, upd.AdminNotes)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the registration vanished or its version moved on.
		var exists bool
		if err := queryRow(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM registrations WHERE number = $1)`, number).Scan(&exists); err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if !exists {
			return domain.ErrRegistrationNotFound
		}
		return domain.ErrTransitionConflict
	}
	return nil
}

// UpdateDetails applies a registrant self-edit under the same optimistic
// version discipline as status transitions.
func (r *RegistrationRepository) UpdateDetails(ctx context.Context, number string, expectedVersion int, upd domain.DetailsUpdate) error {
	const stmt = `
UPDATE registrations
SET contact_email = COALESCE($3, contact_email),
    contact_phone = COALESCE($4, contact_phone),
    special_requirements = COALESCE($5, special_requirements),
    payment_screenshot_ref = COALESCE($6, payment_screenshot_ref),
    version = version + 1
WHERE number = $1 AND version = $2`

	tag, err := exec(ctx, r.pool, stmt, number, expectedVersion,
		upd.ContactEmail, upd.ContactPhone, upd.SpecialRequirements, upd.PaymentScreenshot)
	if err != nil {
		return fmt.Errorf("update registration details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransitionConflict
	}
	return nil
}

func (r *RegistrationRepository) ListBySubject(ctx context.Context, subjectID string) ([]domain.Registration, error) {
	const q = `
SELECT ` + registrationColumns + `
FROM registrations
WHERE subject_id = $1
ORDER BY submitted_at DESC`

	rows, err := query(ctx, r.pool, q, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func scanRegistration(row pgx.Row) (domain.Registration, error) {
	var (
		reg        domain.Registration
		teamName   *string
		members    []byte
		reviewedBy *string
		reviewedAt *time.Time
	)
	err := row.Scan(
		&reg.Number,
		&reg.EventID,
		&reg.SubjectID,
		&reg.Kind,
		&teamName,
		&members,
		&reg.Status,
		&reg.ContactEmail,
		&reg.ContactPhone,
		&reg.SpecialRequirements,
		&reg.Payment.Amount,
		&reg.Payment.Reference,
		&reg.Payment.ScreenshotRef,
		&reg.Payment.Status,
		&reg.AdminNotes,
		&reviewedBy,
		&reviewedAt,
		&reg.SubmittedAt,
		&reg.Version,
	)
	if err != nil {
		return domain.Registration{}, err
	}
	if teamName != nil {
		reg.TeamName = *teamName
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &reg.TeamMembers); err != nil {
			return domain.Registration{}, fmt.Errorf("decode team members: %w", err)
		}
	}
	if len(reg.TeamMembers) == 0 {
		reg.TeamMembers = nil
	}
	if reviewedBy != nil {
		reg.ReviewedBy = *reviewedBy
	}
	reg.ReviewedAt = reviewedAt
	return reg, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
