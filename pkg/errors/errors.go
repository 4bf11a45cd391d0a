package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation represents invalid user input at the service boundary
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeFetch represents network failures, timeouts or bad status codes
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeExtraction represents listing markup that could not be parsed
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeRateLimit represents a keyword that is temporarily blocked
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypePersistence represents store connection or write failures
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scrape-pipeline error tied to the keyword it ran for
type ScrapeError struct {
	Type    ErrorType
	Keyword string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Keyword, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Keyword, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch:
		return true
	case ErrorTypePersistence:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, keyword, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Keyword: keyword,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewValidation creates a new validation error
func NewValidation(keyword, message string) *ScrapeError {
	return New(ErrorTypeValidation, keyword, message, nil)
}

// NewFetch creates a new fetch error
func NewFetch(keyword, message string, err error) *ScrapeError {
	return New(ErrorTypeFetch, keyword, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(keyword, message string, err error) *ScrapeError {
	return New(ErrorTypeExtraction, keyword, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(keyword string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, keyword, message, nil)
}

// NewPersistence creates a new persistence error
func NewPersistence(keyword, message string, err error) *ScrapeError {
	return New(ErrorTypePersistence, keyword, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
