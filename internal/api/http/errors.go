package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runanywhere/commons/internal/errcode"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error    string       `json:"error"`
	Code     errcode.Code `json:"code"`
	Category string       `json:"category"`
}

func statusOf(code errcode.Code) int {
	switch code {
	case errcode.ModuleNotFound, errcode.ProviderNotFound, errcode.NoCapableProvider,
		errcode.FileNotFound, errcode.ModelNotFound:
		return http.StatusNotFound
	case errcode.InvalidArgument, errcode.InvalidInput, errcode.ValidationFailed:
		return http.StatusBadRequest
	case errcode.FeatureNotAvailable, errcode.NotImplemented:
		return http.StatusNotImplemented
	case errcode.NotInitialized:
		return http.StatusServiceUnavailable
	case errcode.Cancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := errcode.CodeOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusOf(code), ErrorResponse{
		Error:    err.Error(),
		Code:     code,
		Category: errcode.CategoryOf(code),
	})
}
