package http

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// toHumaError translates workflow errors to Huma HTTP errors. The error kind
// travels as the first detail so clients can branch on it.
func toHumaError(err error) error {
	kind := domain.KindOf(err)
	detail := &huma.ErrorDetail{Location: "kind", Value: string(kind), Message: err.Error()}

	switch kind {
	case domain.KindNotFound:
		return huma.NewError(http.StatusNotFound, err.Error(), detail)
	case domain.KindDuplicateAssignment, domain.KindExclusivityViolation, domain.KindConflict:
		return huma.NewError(http.StatusConflict, err.Error(), detail)
	case domain.KindInvalidTransition, domain.KindInvalidCancellationRequest, domain.KindValidation:
		return huma.NewError(http.StatusUnprocessableEntity, err.Error(), detail)
	case domain.KindUnavailable:
		return huma.NewError(http.StatusServiceUnavailable, "lead store unavailable", detail)
	default:
		return huma.Error500InternalServerError("internal server error")
	}
}
