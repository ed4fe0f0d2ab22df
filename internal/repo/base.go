package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/db"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Rebind returns a Base scoped to tx; a nil tx keeps the current handle.
func (b Base) Rebind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Count returns how many rows of model match the condition.
func (b Base) Count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	err := b.DB(ctx).Model(model).Where(query, args...).Count(&n).Error
	return n, err
}

// MapError translates persistence failures into typed errors. entity names the
// record in NOT_FOUND and CONFLICT messages.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, entity+" already exists")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, entity+" is still referenced")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist "+entity)
}
