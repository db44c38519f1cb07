package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCaregiverInactive   = errors.New("caregiver account is inactive")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyScan           = errors.New("scan contains no data")
	ErrDuplicateScan       = errors.New("identical scan already recorded for this student")
	ErrScanAlreadyVerified = errors.New("scan has already been verified")
	ErrStudentUnknown      = errors.New("scan could not be attributed to a student")
	ErrAssignTokenInvalid  = errors.New("assignment token is invalid or expired")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrOCRFailed           = errors.New("text extraction failed")
)
