package controller

import (
	"net/http"

	"github.com/Coubiac/signstamp/internal/logger"
	"github.com/Coubiac/signstamp/internal/storeerr"
	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body returned by every failed command.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusFor maps an error class to the HTTP status reported to the UI.
func StatusFor(err error) int {
	switch {
	case errdefs.IsInvalidArgument(err):
		return http.StatusBadRequest
	case errdefs.IsNotFound(err):
		return http.StatusNotFound
	case errdefs.IsPermissionDenied(err):
		return http.StatusForbidden
	case errdefs.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case errdefs.IsDataLoss(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	logger.WithComponent("api").Warnf("%s %s failed (%d): %v", c.Request.Method, c.Request.URL.Path, status, err)
	kind := string(storeerr.KindOf(err))
	_ = c.Error(err).SetMeta(kind)
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func respondBadRequest(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payload: " + err.Error()})
}
