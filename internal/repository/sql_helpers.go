package repository

import (
	"errors"

	tutor_errors "tutor-central/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// translate maps driver errors onto the sentinel taxonomy.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tutor_errors.NotFound(op)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return tutor_errors.ErrConflict
	default:
		return tutor_errors.Storage(op, err)
	}
}

// affected turns a zero-row write into ErrNotFound.
func affected(op string, res *gorm.DB) error {
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return tutor_errors.NotFound(op)
	}
	return nil
}
