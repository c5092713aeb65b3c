package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("repository: not found")

func translateNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// validID reports whether id can be compared against a UUID column.
// Malformed ids cannot match any row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
