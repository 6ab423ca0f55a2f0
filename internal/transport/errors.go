package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/middleware"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"

	"go.uber.org/zap"
)

var (
	errConfirmationRequired = errors.New("confirmation required: repeat the request with confirm=true")
	errInvalidPeriod        = errors.New("month must be 1-12 and year a number")
)

const (
	codeProductNotFound      middleware.ErrorCode = "PRODUCT_NOT_FOUND"
	codeSaleNotFound         middleware.ErrorCode = "SALE_NOT_FOUND"
	codeInsufficientStock    middleware.ErrorCode = "INSUFFICIENT_STOCK"
	codeProductRequired      middleware.ErrorCode = "PRODUCT_REQUIRED"
	codeInvalidInput         middleware.ErrorCode = "INVALID_INPUT"
	codeInvalidBackup        middleware.ErrorCode = "INVALID_BACKUP"
	codeInvalidPeriod        middleware.ErrorCode = "INVALID_PERIOD"
	codeConfirmationRequired middleware.ErrorCode = "CONFIRMATION_REQUIRED"
	codeBackupTooLarge       middleware.ErrorCode = "BACKUP_TOO_LARGE"
)

// serviceErrors maps sentinels to their status and code, first match wins
var serviceErrors = []struct {
	target error
	status int
	code   middleware.ErrorCode
}{
	{store.ErrProductNotFound, http.StatusNotFound, codeProductNotFound},
	{store.ErrSaleNotFound, http.StatusNotFound, codeSaleNotFound},
	{service.ErrInsufficientStock, http.StatusConflict, codeInsufficientStock},
	{service.ErrProductRequired, http.StatusBadRequest, codeProductRequired},
	{service.ErrInvalidInput, http.StatusBadRequest, codeInvalidInput},
	{domain.ErrInvalidBackup, http.StatusBadRequest, codeInvalidBackup},
}

// respondWithServiceError maps service and store errors to HTTP statuses.
// Unknown errors are logged and answered with 500.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	for _, e := range serviceErrors {
		if errors.Is(err, e.target) {
			middleware.RespondWithCode(w, e.status, e.code, err.Error(), nil)
			return
		}
	}

	logger.Error("Request failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

// confirmed reports whether the request carries confirm=true
func confirmed(r *http.Request) bool {
	ok, err := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return err == nil && ok
}

// requireConfirmation answers 409 and returns false when the request is not
// confirmed
func requireConfirmation(w http.ResponseWriter, r *http.Request) bool {
	if confirmed(r) {
		return true
	}
	middleware.RespondWithCode(w, http.StatusConflict, codeConfirmationRequired, errConfirmationRequired.Error(), nil)
	return false
}

// parsePeriod reads month and year from the query, each falling back to the
// current period when absent
func parsePeriod(r *http.Request, current func() (time.Month, int)) (time.Month, int, error) {
	month, year := current()
	query := r.URL.Query()

	if raw := query.Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errInvalidPeriod
		}
		month = time.Month(m)
	}
	if raw := query.Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errInvalidPeriod
		}
		year = y
	}

	return month, year, nil
}
