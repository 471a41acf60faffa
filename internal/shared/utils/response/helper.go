package response

import (
	"errors"
	"net/http"

	"venuebook/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondSuccess writes a "success" envelope
func RespondSuccess(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// RespondError maps err onto the envelope. Business errors keep their stable
// code and status; anything else is reported as internal_error.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		RespondJSON(c, "error", appErr.Status, appErr.Message, nil, ErrorDetail{Code: appErr.Code})
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		RespondValidationError(c, validationErrs)
		return
	}

	_ = c.Error(err)
	RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil,
		ErrorDetail{Code: "internal_error"})
}

// RespondValidationError reports field-level validation failures
func RespondValidationError(c *gin.Context, err error) {
	fields := map[string]string{}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
	}

	RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, ErrorDetail{
		Code:   apperr.ErrInvalidRequest.Code,
		Fields: fields,
		Detail: err.Error(),
	})
}
