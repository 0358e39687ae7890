package handler

import (
	"errors"
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/repository"
	"github.com/MAKAMOUL/prophoneplus/internal/service"
	"github.com/MAKAMOUL/prophoneplus/pkg/apierror"
	"github.com/MAKAMOUL/prophoneplus/pkg/response"
)

// writeServiceError maps service-layer errors onto API errors. Anything
// not recognized is a local storage failure, surfaced as 503 so the UI
// can offer a retry.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.Error(w, apierror.NotFound(""))
	case errors.Is(err, service.ErrCategoryInUse):
		response.Error(w, apierror.Conflict(err.Error()))
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrInvalidRole):
		response.Error(w, apierror.BadRequest(err.Error()))
	default:
		response.Error(w, apierror.ServiceUnavailable("local store unavailable"))
	}
}
