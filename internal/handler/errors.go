// internal/handler/errors.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"board-bridge/internal/bridge"
	"board-bridge/internal/protocol"
	"board-bridge/internal/utils"
)

// statusForError maps bridge and protocol errors to an HTTP status
func statusForError(err error) int {
	switch {
	case errors.Is(err, bridge.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, bridge.ErrAlreadyConnected):
		return http.StatusConflict
	case errors.Is(err, protocol.ErrInvalidCommand), errors.Is(err, protocol.ErrMalformedRaw):
		return http.StatusUnprocessableEntity
	case bridge.IsConnectError(err):
		switch bridge.ConnectReason(err) {
		case bridge.ConnectInvalidBaudRate:
			return http.StatusBadRequest
		case bridge.ConnectPortNotFound:
			return http.StatusNotFound
		case bridge.ConnectPortBusy:
			return http.StatusConflict
		case bridge.ConnectPermissionDenied:
			return http.StatusForbidden
		default:
			return http.StatusBadGateway
		}
	case bridge.IsSendError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// bridgeErrorResponse sends err with the status statusForError picks
func bridgeErrorResponse(c *gin.Context, message string, err error) {
	utils.ErrorResponse(c, statusForError(err), message, err)
}
