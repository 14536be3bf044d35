package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/money-transfer-wallet/internal/api_gateway/middleware"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Data          any        `json:"data,omitempty"`
	Error         *ErrorBody `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *PageMeta  `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

var errorCodes = map[int]string{
	http.StatusBadRequest:            "BAD_REQUEST",
	http.StatusUnauthorized:          "UNAUTHORIZED",
	http.StatusNotFound:              "NOT_FOUND",
	http.StatusConflict:              "CONFLICT",
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusInternalServerError:   "INTERNAL_SERVER_ERROR",
	http.StatusServiceUnavailable:    "SERVICE_UNAVAILABLE",
}

var defaultMessages = map[int]string{
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusNotFound:            "Resource not found",
	http.StatusInternalServerError: "An internal server error occurred",
}

func send(c *gin.Context, status int, r Response) {
	r.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(status, r)
}

func respondError(c *gin.Context, status int, message string) {
	if message == "" {
		message = defaultMessages[status]
	}
	code, ok := errorCodes[status]
	if !ok {
		code = "ERROR"
	}
	send(c, status, Response{Error: &ErrorBody{Code: code, Message: message}})
}

func RespondOK(c *gin.Context, data any) {
	send(c, http.StatusOK, Response{Data: data})
}

// RespondWithPaginatedData derives total_pages from totalItems; perPage is at least 1.
func RespondWithPaginatedData(c *gin.Context, status int, data any, page, perPage, totalItems int) {
	if perPage < 1 {
		perPage = 1
	}
	send(c, status, Response{
		Data: data,
		Meta: &PageMeta{
			Page:       page,
			PerPage:    perPage,
			TotalPages: (totalItems + perPage - 1) / perPage,
			TotalItems: totalItems,
		},
	})
}

func RespondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

func RespondUnauthorized(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, message)
}

func RespondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, message)
}

func RespondConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, message)
}

func RespondPayloadTooLarge(c *gin.Context, message string) {
	respondError(c, http.StatusRequestEntityTooLarge, message)
}

func RespondServiceUnavailable(c *gin.Context, message string) {
	respondError(c, http.StatusServiceUnavailable, message)
}

// RespondInternalError hides err from the client and attaches it to the gin context,
// where the request logger picks it up.
func RespondInternalError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	respondError(c, http.StatusInternalServerError, "")
}
