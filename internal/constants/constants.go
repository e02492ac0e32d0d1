package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyTokenID   = "token_id"
	ContextKeyTokenExp  = "token_expires_at"
	ContextKeyTask      = "task"
	ContextKeyRequestID = "request_id"
)

// HeaderRequestID is the header used to propagate request IDs.
const HeaderRequestID = "X-Request-ID"

// Validation limits
const (
	MinPasswordLength    = 6
	MaxPasswordLength    = 72
	MaxNameLength        = 50
	MaxBioLength         = 500
	MaxAvatarLength      = 500
	MaxTaskTitleLength   = 100
	MaxTaskDescLength    = 500
	MaxTagLength         = 30
	MaxTagsPerTask       = 20
	MaxSuggestTextLength = 4000
	MaxSuggestedTasks    = 20
)

// Defaults
const (
	DefaultTokenTTL        = 30 * 24 * time.Hour
	DefaultStatsCacheTTL   = time.Minute
	DefaultRateLimitMax    = 100
	DefaultRateLimitWindow = 10 * time.Minute
	DefaultTaskSortField   = "createdAt"
)
