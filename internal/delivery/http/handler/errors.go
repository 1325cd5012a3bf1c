package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// handleError maps service layer errors to HTTP responses. Validation and
// not-found errors carry actionable messages (they may name the offending
// SKU); internal errors surface a generic message and log the detail.
func handleError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrIntegrity):
		log.Error("Catalog integrity error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	default:
		log.Error("Internal error in handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
