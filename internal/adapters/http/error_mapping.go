package httpadapter

import (
	"net/http"

	"github.com/airndlab/support-qna/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnknownPipeline):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAnswerNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrPipelineUnavailable):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
