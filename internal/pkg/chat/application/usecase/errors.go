package usecase

import (
	stderrors "errors"

	"go-courier/pkg/apperrors"
)

// storeFail converts a repository failure into the UNAVAILABLE class unless the
// error already carries an application code (validation, not-found, ...). The
// triggering operation fails as a whole; retry policy belongs to the caller.
func storeFail(err error) error {
	if err == nil {
		return nil
	}
	var app *apperrors.AppError
	if stderrors.As(err, &app) {
		return err
	}
	return apperrors.ErrStore(err)
}
