package errors

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a classified error.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError classifies a database or service error into a code and a
// message safe to return to the client. Raw driver messages never leak.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	// 1. GORM errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: fmt.Sprintf("%s not found", contextLabel(context)),
		}
	}

	// 2. PostgreSQL constraint violations

	// unique constraint (23505); sqlite reports "UNIQUE constraint failed"
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: fmt.Sprintf("%s already exists", contextLabel(context)),
		}
	}

	// foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "A referenced record does not exist or is still in use",
		}
	}

	// not null constraint (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// 3. Connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A dependent service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong. Please try again later",
	}
}

func notFoundCode(context string) string {
	switch context {
	case "region":
		return RegionNotFound
	case "location":
		return LocationNotFound
	case "machine":
		return MachineNotFound
	case "mapping":
		return MappingNotFound
	case "upload":
		return UploadNotFound
	default:
		return ResourceNotFound
	}
}

func contextLabel(context string) string {
	if context == "" {
		return "Record"
	}
	return strings.ToUpper(context[:1]) + context[1:]
}
