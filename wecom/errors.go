package wecom

import (
	"errors"
	"fmt"
)

// Standard errors for the wecom package
var (
	// Configuration errors
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNoToken        = errors.New("no access token available")
	ErrUnknownProfile = errors.New("unknown connection profile")

	// API errors
	ErrRateLimited    = errors.New("wecom rate limit wait aborted")
	ErrUploadRejected = errors.New("media upload rejected")
	ErrMediaNotFound  = errors.New("media not found")
)

// APIError carries the platform's errcode and errmsg.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("errcode %d: %s", e.Code, e.Message)
}
