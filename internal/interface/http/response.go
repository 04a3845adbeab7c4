package api

import (
	"errors"
	"net/http"

	"tourstaff-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope of every API reply
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// fail maps domain errors onto HTTP statuses
func (h *Handler) fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), domain.IsValidation(err):
		status, code = http.StatusBadRequest, "validation_error"
	case domain.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case domain.IsStateConflict(err):
		status, code = http.StatusConflict, "state_conflict"
	case domain.IsTransientIO(err):
		status, code = http.StatusServiceUnavailable, "upstream_unavailable"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: err.Error()},
	})
}
