package httpx

import (
	"errors"
	"net/http"

	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, shared.ErrAccountInactive):
		Problem(w, http.StatusForbidden, "Forbidden", "account inactive")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
