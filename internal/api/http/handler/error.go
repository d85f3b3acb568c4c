package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/model"
)

// writeError renders any error as a JSON body with a message and a machine
// code. Structured API errors pass through; bare storage errors are mapped
// conservatively and everything else becomes a 500 without leaking detail.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	if apiErr, ok := apierrors.AsAPIError(err); ok {
		c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{
			"message": apiErr.Message,
			"code":    apiErr.Code,
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"message": "resource not found",
			"code":    apierrors.CodeNotFound,
		})
	case errors.Is(err, model.ErrAlreadyPublished):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"message": "paper is already published",
			"code":    apierrors.CodeAlreadyPublished,
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "internal server error",
			"code":    apierrors.CodeInternal,
		})
	}
}
