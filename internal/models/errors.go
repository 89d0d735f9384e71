package models

import "errors"

// Application-wide standard errors
var (
	// Common resource/DB errors
	ErrNotFound = errors.New("resource not found")

	// User & authentication errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden          = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Story errors
	ErrStoryNotFound   = errors.New("story not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentTooLong  = errors.New("comment content exceeds maximum length")

	// Quota errors
	ErrQuotaExceeded = errors.New("story generation quota exceeded")

	// General request/server errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
