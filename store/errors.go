package store

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"golang.org/x/xerrors"
)

var (
	// ErrNotFound means the lookup key resolved to nothing.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable means the backing store could not answer.
	ErrUnavailable = errors.New("store unavailable")
	// ErrDuplicateOrderNumber is returned by InsertOrder when the order
	// number is already taken.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
	// ErrDuplicateProduct is returned by CreateProduct for an existing id.
	ErrDuplicateProduct = errors.New("duplicate product id")
)

const uniqueViolation = "23505"

// kindError tags a driver error with one of the sentinels above while keeping
// the driver error reachable through errors.Is/As.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.err.Error()
}

func (e *kindError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

func wrap(op string, kind, err error) error {
	return xerrors.Errorf("%s: %w", op, &kindError{kind: kind, err: err})
}

// classifyRead maps a read failure to ErrNotFound or ErrUnavailable.
func classifyRead(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return wrap(op, ErrNotFound, nil)
	}
	return wrap(op, ErrUnavailable, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
