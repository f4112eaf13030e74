package handler

import (
	"errors"
	"net/http"

	"github.com/krbenergy/uco-engine/internal/domain"
	customError "github.com/krbenergy/uco-engine/pkg/errors"
	"github.com/krbenergy/uco-engine/pkg/response"
)

// actorFrom extracts the authenticated actor forwarded by the API gateway.
// Authentication and authorization happen upstream.
func actorFrom(r *http.Request) domain.Actor {
	return domain.Actor{
		ID:   r.Header.Get("X-User-Id"),
		Name: r.Header.Get("X-User-Name"),
	}
}

// writeError maps a business error onto the HTTP status space.
func writeError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		response.InternalServerError(w, "internal error", err)
		return
	}

	switch businessErr.Code {
	case customError.ErrCodeCollectionNotFound,
		customError.ErrCodeFBONotFound,
		customError.ErrCodeBillNotFound,
		customError.ErrCodePaymentNotFound:
		response.ErrorWithCode(w, http.StatusNotFound, businessErr.Code, businessErr.Message, businessErr.Err)
	case customError.ErrCodeCollectionAlreadyPaid,
		customError.ErrCodeVersionConflict:
		response.ErrorWithCode(w, http.StatusConflict, businessErr.Code, businessErr.Message, businessErr.Err)
	case customError.ErrCodeCollectionNotPending,
		customError.ErrCodeInvalidPaymentAmount,
		customError.ErrCodeValidationError:
		response.ErrorWithCode(w, http.StatusBadRequest, businessErr.Code, businessErr.Message, businessErr.Err)
	default:
		response.ErrorWithCode(w, http.StatusInternalServerError, businessErr.Code, businessErr.Message, businessErr.Err)
	}
}
