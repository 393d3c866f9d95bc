package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Alijeyrad/clinicbook/internal/repo"
)

const (
	codeExclusionViolation  = "23P01"
	codeForeignKeyViolation = "23503"
)

// IsConflict reports whether err is the appointments_no_overlap exclusion violation.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeExclusionViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// translate maps driver errors onto the repo sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return repo.ErrNotFound
	case IsConflict(err):
		return fmt.Errorf("%s: %w", op, repo.ErrOverlap)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, repo.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
