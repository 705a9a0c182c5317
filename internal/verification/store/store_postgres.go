package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"careguard/internal/verification"
	id "careguard/pkg/domain"
	"careguard/pkg/platform/sentinel"
)

// PostgresLedger persists verification checks in PostgreSQL. Rows are only
// ever inserted; there is no update path.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger constructs a PostgreSQL-backed ledger.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Append inserts one check row.
func (l *PostgresLedger) Append(ctx context.Context, check verification.Check) error {
	query := `
		INSERT INTO verification_checks (
			id, user_id, check_type, status, document_url, verification_data,
			verified_at, expires_at, auto_verified, manual_review_required, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := l.db.ExecContext(ctx, query,
		uuid.UUID(check.ID),
		uuid.UUID(check.UserID),
		string(check.CheckType),
		string(check.Status),
		nullString(check.DocumentURL),
		[]byte(check.VerificationData),
		nullTime(check.VerifiedAt),
		nullTime(check.ExpiresAt),
		check.AutoVerified,
		check.ManualReviewRequired,
		check.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("append verification check: duplicate id %s: %w", check.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("append verification check: %w", err)
	}
	return nil
}

// ListByUser returns the user's check history, newest first.
func (l *PostgresLedger) ListByUser(ctx context.Context, userID id.UserID) ([]verification.Check, error) {
	query := `
		SELECT id, user_id, check_type, status, document_url, verification_data,
		       verified_at, expires_at, auto_verified, manual_review_required, created_at
		FROM verification_checks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := l.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list verification checks: %w", err)
	}
	defer rows.Close()

	var checks []verification.Check
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification check: %w", err)
		}
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list verification checks: %w", err)
	}
	return checks, nil
}

func scanCheck(rows *sql.Rows) (verification.Check, error) {
	var (
		check       verification.Check
		checkID     uuid.UUID
		userID      uuid.UUID
		checkType   string
		status      string
		documentURL sql.NullString
		data        []byte
		verifiedAt  sql.NullTime
		expiresAt   sql.NullTime
	)
	err := rows.Scan(
		&checkID, &userID, &checkType, &status, &documentURL, &data,
		&verifiedAt, &expiresAt, &check.AutoVerified, &check.ManualReviewRequired, &check.CreatedAt,
	)
	if err != nil {
		return verification.Check{}, err
	}
	check.ID = id.CheckID(checkID)
	check.UserID = id.UserID(userID)
	check.CheckType = verification.CheckType(checkType)
	check.Status = verification.Status(status)
	check.DocumentURL = documentURL.String
	check.VerificationData = data
	if verifiedAt.Valid {
		check.VerifiedAt = &verifiedAt.Time
	}
	if expiresAt.Valid {
		check.ExpiresAt = &expiresAt.Time
	}
	return check, nil
}

// PostgresUserStatuses persists the denormalized per-check-type status
// columns on the users table.
type PostgresUserStatuses struct {
	db *sql.DB
}

// NewPostgresUserStatuses constructs a PostgreSQL-backed status store.
func NewPostgresUserStatuses(db *sql.DB) *PostgresUserStatuses {
	return &PostgresUserStatuses{db: db}
}

// Get returns the user's current statuses. A user with no row is reported as
// all-unset, not an error.
func (s *PostgresUserStatuses) Get(ctx context.Context, userID id.UserID) (verification.UserVerification, error) {
	query := `
		SELECT first_name, email, wwcc_status, police_check_status,
		       identity_status, wwcc_last_checked
		FROM users
		WHERE id = $1
	`
	var (
		user            verification.UserVerification
		wwccLastChecked sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&user.FirstName,
		&user.Email,
		&user.WWCCStatus,
		&user.PoliceCheckStatus,
		&user.IdentityStatus,
		&wwccLastChecked,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return emptyVerification(userID), nil
		}
		return verification.UserVerification{}, fmt.Errorf("get verification status: %w", err)
	}
	user.UserID = userID
	if wwccLastChecked.Valid {
		user.WWCCLastChecked = &wwccLastChecked.Time
	}
	return user, nil
}

// Set updates the status column for one check type.
func (s *PostgresUserStatuses) Set(ctx context.Context, userID id.UserID, checkType verification.CheckType, status verification.Status, checkedAt time.Time) error {
	var query string
	args := []any{string(status), uuid.UUID(userID)}

	switch checkType {
	case verification.CheckTypeWWCC:
		query = `UPDATE users SET wwcc_status = $1, wwcc_last_checked = $3 WHERE id = $2`
		args = append(args, checkedAt)
	case verification.CheckTypePoliceCheck:
		query = `UPDATE users SET police_check_status = $1 WHERE id = $2`
	case verification.CheckTypeIdentity:
		query = `UPDATE users SET identity_status = $1 WHERE id = $2`
	default:
		return fmt.Errorf("unknown check type: %s", checkType)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set verification status: %w", err)
	}
	return nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
