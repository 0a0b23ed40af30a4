package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo carries the machine readable error code. Details, when set, point
// at the product component and reference row that failed to price.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPagination fills in the page count, falling back to page 1 and a limit
// of 20 for non-positive input.
func NewPagination(page, limit, totalItems int) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	}
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	respond(c, Response{Success: true, Code: code, Message: message, Data: data}, nil)
}

// SuccessWithPagination writes a list page together with its pagination meta.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	respond(c, Response{Success: true, Code: code, Message: message, Data: data}, NewPagination(page, limit, totalItems))
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	ErrorWithDetails(c, code, errCode, message, nil)
}

// ErrorWithDetails is Error with extra key/value context for the client.
func ErrorWithDetails(c *gin.Context, code int, errCode, message string, details map[string]string) {
	respond(c, Response{
		Code:    code,
		Message: message,
		Error:   &ErrorInfo{Code: errCode, Message: message, Details: details},
	}, nil)
}

func respond(c *gin.Context, r Response, p *Pagination) {
	r.Meta = Meta{
		RequestID:  requestID(c),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Pagination: p,
	}
	c.JSON(r.Code, r)
}

func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
