package responses

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// jsonSuccessResponse is the structure for successful responses.
type jsonSuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// jsonErrorResponse is the structure for error responses.
type jsonErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Errors  interface{} `json:"errors,omitempty"` // field-level validation detail
}

// jsonPaginatedResponse is the structure for responses carrying a page of items.
type jsonPaginatedResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	Pagination pagination  `json:"pagination"`
}

type pagination struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// ErrorResponse sends a standardized error JSON response.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	statusText := "error"
	if statusCode >= http.StatusInternalServerError {
		statusText = "fail"
	}
	c.AbortWithStatusJSON(statusCode, jsonErrorResponse{
		Status:  statusText,
		Message: message,
		Code:    statusCode,
	})
}

// formatValidationErrors converts validator.ValidationErrors into a field map.
func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	formatted := make(map[string]string)
	for _, err := range errs {
		fieldKey := strings.ToLower(err.Field())
		var msg string
		switch err.Tag() {
		case "required":
			msg = fmt.Sprintf("The %s field is required.", err.Field())
		case "min":
			msg = fmt.Sprintf("The %s field must be at least %s.", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("The %s field must not exceed %s.", err.Field(), err.Param())
		case "len":
			msg = fmt.Sprintf("The %s field must contain exactly %s entries.", err.Field(), err.Param())
		case "gte":
			msg = fmt.Sprintf("The %s field must be at least %s.", err.Field(), err.Param())
		case "lte":
			msg = fmt.Sprintf("The %s field must be at most %s.", err.Field(), err.Param())
		case "oneof":
			msg = fmt.Sprintf("The %s field must be one of the following: %s.", err.Field(), strings.ReplaceAll(err.Param(), " ", ", "))
		default:
			msg = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", err.Field(), err.Tag())
		}
		formatted[fieldKey] = msg
	}
	return formatted
}

// ValidationErrorResponse sends a structured response for binding failures
// from c.ShouldBindJSON or similar.
func ValidationErrorResponse(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.AbortWithStatusJSON(http.StatusBadRequest, jsonErrorResponse{
			Status:  "error",
			Message: "Validation failed. Please check your input.",
			Code:    http.StatusBadRequest,
			Errors:  formatValidationErrors(ve),
		})
		return
	}
	ErrorResponse(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
}

// SuccessResponse sends a standardized success JSON response. When the data is
// a gin.H containing a string "message" key, the message is lifted to the top
// level and the remaining keys become the payload.
func SuccessResponse(c *gin.Context, statusCode int, responseData interface{}) {
	payload := jsonSuccessResponse{Status: "success"}

	if gh, ok := responseData.(gin.H); ok {
		if msg, isStr := gh["message"].(string); isStr {
			payload.Message = msg
			dataMap := make(gin.H)
			for k, v := range gh {
				if k != "message" {
					dataMap[k] = v
				}
			}
			if len(dataMap) > 0 {
				payload.Data = dataMap
			}
			c.JSON(statusCode, payload)
			return
		}
	}
	payload.Data = responseData
	c.JSON(statusCode, payload)
}

// PaginatedResponse sends a standardized success response for paginated data.
func PaginatedResponse(c *gin.Context, statusCode int, itemsData interface{}, currentPage, pageSize int, totalItems int64) {
	if pageSize <= 0 {
		pageSize = 10
	}
	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(pageSize)))
		if totalPages == 0 {
			totalPages = 1
		}
	}
	c.JSON(statusCode, jsonPaginatedResponse{
		Status: "success",
		Data:   itemsData,
		Pagination: pagination{
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			CurrentPage: currentPage,
			PageSize:    pageSize,
			HasNextPage: currentPage < totalPages,
			HasPrevPage: currentPage > 1 && currentPage <= totalPages,
		},
	})
}
