package httpapi

import (
	"errors"
	"net/http"

	"github.com/JerraForge/hydroponic-backend/internal/service"

	"go.uber.org/zap"
)

// writeServiceError maps service errors to HTTP statuses.
// Foreign systems are reported exactly like missing ones.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
	case service.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, Fail("hydroponic system not found"))
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, Fail(ve.Error()))
	default:
		logger.Error(op+" failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal server error"))
	}
}
