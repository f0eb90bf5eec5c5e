// Package repository implements the data access layer for the blog.
package repository

import (
	"errors"

	"blogsite/internal/database"
	"blogsite/internal/models"

	"gorm.io/gorm"
)

// translate maps GORM and driver errors onto the AppError taxonomy.
// onDuplicate builds the error for a unique violation on the entity's key.
func translate(err error, notFound func() error, onDuplicate func(error) error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound()
	case database.IsUniqueViolation(err) && onDuplicate != nil:
		return onDuplicate(err)
	case database.IsForeignKeyViolation(err):
		return &models.AppError{
			Code:    models.CodeValidation,
			Message: "Referenced record does not exist",
			Err:     err,
		}
	default:
		return models.NewInternalError(err)
	}
}
