package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to display messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadEmptyFile       = "UPLOAD_EMPTY_FILE"
	UploadParseFailed     = "UPLOAD_PARSE_FAILED"
	UploadNotFound        = "UPLOAD_NOT_FOUND"
	UploadTooLarge        = "UPLOAD_TOO_LARGE"

	// ==================== Imports (IMPORT_) ====================
	ImportInProgress = "IMPORT_IN_PROGRESS"
	ImportFailed     = "IMPORT_FAILED"

	// ==================== Entities (ENTITY_) ====================
	RegionNotFound   = "REGION_NOT_FOUND"
	LocationNotFound = "LOCATION_NOT_FOUND"
	MachineNotFound  = "MACHINE_NOT_FOUND"
	MappingNotFound  = "MAPPING_NOT_FOUND"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API_ERROR"
)
