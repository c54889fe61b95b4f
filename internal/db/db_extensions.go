package db

import (
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// IsNoRows reports whether err means a :one query matched nothing,
// which ClaimRun also returns when the day was already claimed.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
