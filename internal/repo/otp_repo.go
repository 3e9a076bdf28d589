package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/schoolregistry/server/internal/model"
)

// ErrNoMatchingCode means no unconsumed, unexpired code matched.
var ErrNoMatchingCode = errors.New("no matching code")

// OtpRepo defines the interface for one-time code storage.
type OtpRepo interface {
	Create(ctx context.Context, email, code string, expiresAt time.Time) (model.OtpVerification, error)
	DeleteExpired(ctx context.Context, email string) error
	Consume(ctx context.Context, email, code string) error
	CountUnconsumed(ctx context.Context, email string) (int, error)
}

type otpRepo struct {
	db *sql.DB
}

// NewOtpRepo creates a new OtpRepo instance
func NewOtpRepo(db *sql.DB) OtpRepo {
	return &otpRepo{db: db}
}

// Create inserts a fresh code for the email. Earlier rows for the same
// email may still exist; Consume's query ordering makes the newest one win.
func (r *otpRepo) Create(ctx context.Context, email, code string, expiresAt time.Time) (model.OtpVerification, error) {
	var rec model.OtpVerification
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO otp_verifications (email, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, email, code, created_at, expires_at, consumed
	`, email, code, expiresAt).Scan(
		&rec.ID,
		&rec.Email,
		&rec.Code,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.Consumed,
	)
	if err != nil {
		return model.OtpVerification{}, fmt.Errorf("insert code: %w", err)
	}
	return rec, nil
}

// DeleteExpired removes already-expired rows for the email. Housekeeping
// only: Consume ignores expired rows whether or not they were deleted.
func (r *otpRepo) DeleteExpired(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM otp_verifications WHERE email = $1 AND expires_at < now()
	`, email)
	if err != nil {
		return fmt.Errorf("delete expired codes: %w", err)
	}
	return nil
}

// Consume marks the most recent unconsumed, unexpired matching code as
// consumed and deletes every other row for the email. The match and the
// mark happen in one conditional UPDATE guarded by the full predicate, so
// two concurrent calls for the same code cannot both succeed: the second
// one re-evaluates the predicate against the updated row and finds
// consumed = TRUE.
func (r *otpRepo) Consume(ctx context.Context, email, code string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		UPDATE otp_verifications
		SET consumed = TRUE
		WHERE consumed = FALSE
		  AND expires_at > now()
		  AND email = $1
		  AND code = $2
		  AND id = (
			SELECT id FROM otp_verifications
			WHERE email = $1 AND code = $2 AND consumed = FALSE AND expires_at > now()
			ORDER BY created_at DESC
			LIMIT 1
		  )
		RETURNING id
	`, email, code).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoMatchingCode
		}
		return fmt.Errorf("consume code: %w", err)
	}

	// Superseded and stale rows for this email are dead now.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM otp_verifications WHERE email = $1 AND id <> $2
	`, email, id)
	if err != nil {
		return fmt.Errorf("cleanup codes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountUnconsumed returns the number of unconsumed rows for the email.
func (r *otpRepo) CountUnconsumed(ctx context.Context, email string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM otp_verifications WHERE email = $1 AND consumed = FALSE
	`, email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unconsumed codes: %w", err)
	}
	return count, nil
}
