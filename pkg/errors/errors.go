package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrConflict          = errors.New("resource already exists")
	ErrInternalServer    = errors.New("internal server error")
	ErrExpired           = errors.New("resource expired")
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStaleStatus       = errors.New("status changed concurrently")
)

// Error codes rendered in the JSON envelope.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeBadRequest        = "BAD_REQUEST"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeWrongTokenType    = "WRONG_TOKEN_TYPE"
	CodeInvalidTokenType  = "INVALID_TOKEN_TYPE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeCommentRequired   = "COMMENT_REQUIRED"
	CodeStatusChanged     = "STATUS_CHANGED"
	CodeAccountInactive   = "ACCOUNT_INACTIVE"
	CodeMissingParam      = "MISSING_PARAM"
	CodeMissingFiles      = "MISSING_FILES"
	CodeNotApproved       = "NOT_APPROVED"
	CodeNoPhotos          = "NO_PHOTOS"
	CodeRateLimited       = "RATE_LIMITED"
)

// AppError is a tagged error kind carrying the HTTP status it maps to.
type AppError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError with an explicit code and status.
func New(status int, code, msg string, err error) *AppError {
	return &AppError{Code: code, Status: status, Message: msg, Err: err}
}

// Constructors
func NotFound(msg string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, msg, ErrNotFound)
}

func Unauthorized(msg string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, msg, ErrUnauthorized)
}

func Forbidden(msg string) *AppError {
	return New(http.StatusForbidden, CodeForbidden, msg, ErrForbidden)
}

func BadRequest(msg string) *AppError {
	return New(http.StatusBadRequest, CodeBadRequest, msg, ErrBadRequest)
}

func Validation(msg string) *AppError {
	return New(http.StatusBadRequest, CodeValidation, msg, ErrValidation)
}

func Conflict(msg string) *AppError {
	return New(http.StatusConflict, CodeConflict, msg, ErrConflict)
}

func InternalServer(msg string, err error) *AppError {
	return New(http.StatusInternalServerError, CodeInternal, msg, err)
}

func InvalidToken() *AppError {
	return New(http.StatusUnauthorized, CodeInvalidToken, "Invalid token", ErrUnauthorized)
}

func TokenExpired() *AppError {
	return New(http.StatusUnauthorized, CodeTokenExpired, "Token has expired", ErrExpired)
}

func WrongTokenType() *AppError {
	return New(http.StatusForbidden, CodeWrongTokenType, "Invalid token type", ErrForbidden)
}

func InvalidTransition() *AppError {
	return New(http.StatusBadRequest, CodeInvalidTransition, "Invalid status transition", ErrInvalidTransition)
}

func CommentRequired() *AppError {
	return New(http.StatusBadRequest, CodeCommentRequired, "Comment is required for revision request", ErrValidation)
}

func StatusChanged() *AppError {
	return New(http.StatusConflict, CodeStatusChanged, "Media status changed, reload and retry", ErrStaleStatus)
}

func AccountInactive() *AppError {
	return New(http.StatusForbidden, CodeAccountInactive, "Account is not active", ErrForbidden)
}

func InvalidTokenType(msg string) *AppError {
	return New(http.StatusBadRequest, CodeInvalidTokenType, msg, ErrBadRequest)
}

func MissingParam(msg string) *AppError {
	return New(http.StatusBadRequest, CodeMissingParam, msg, ErrBadRequest)
}

func MissingFiles(msg string) *AppError {
	return New(http.StatusBadRequest, CodeMissingFiles, msg, ErrBadRequest)
}

func NotApproved(msg string) *AppError {
	return New(http.StatusForbidden, CodeNotApproved, msg, ErrForbidden)
}

func NoPhotos(msg string) *AppError {
	return New(http.StatusNotFound, CodeNoPhotos, msg, ErrNotFound)
}

func TooManyRequests() *AppError {
	return New(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded", nil)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
