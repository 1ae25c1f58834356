package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Credential lifecycle errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrWeakPassword       = errors.New("password does not meet complexity requirements")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)

// KYC workflow errors
var (
	ErrKYCAlreadySubmitted = errors.New("kyc already submitted")
	ErrKYCAlreadyVerified  = errors.New("kyc already verified")
	ErrKYCNotSubmitted     = errors.New("kyc not submitted")
	ErrKYCInvalidStatus    = errors.New("kyc status does not allow this operation")
	ErrKYCInvalidDocument  = errors.New("invalid kyc document")
	ErrKYCDocumentExpired  = errors.New("kyc document expired")
)
