package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repos translate.
const (
	codeUniqueViolation = "23505"
	codeInvalidText     = "22P02"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translate maps driver errors onto domain sentinels. A missing row and a
// malformed uuid literal both become notFound; a unique violation becomes
// conflict when one is given.
func translate(err, notFound, conflict error) error {
	if err == nil {
		return nil
	}

	switch code := sqlState(err); {
	case errors.Is(err, pgx.ErrNoRows), code == codeInvalidText:
		return notFound
	case code == codeUniqueViolation && conflict != nil:
		return conflict
	}
	return err
}
