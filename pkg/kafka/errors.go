package kafka

import (
	"errors"
	"strings"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrConsumerClosed = errors.New("kafka consumer is closed")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")

	// ErrPermanentFailure marks a message that can never be processed
	// successfully. Handlers wrap it to skip retries and go straight to
	// the DLQ.
	ErrPermanentFailure = errors.New("permanent message failure")
)

var transientPatterns = []string{
	"connection refused",
	"timeout",
	"deadline exceeded",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"connection reset",
	"i/o timeout",
	"temporary failure",
}

// isTransient reports whether the error looks like a network-level failure
// worth retrying. Anything else is treated as permanent and goes to the
// DLQ instead of looping forever.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// ShouldRetry decides whether a failed message gets another attempt.
func ShouldRetry(err error, currentRetries, maxRetries int) bool {
	if errors.Is(err, ErrPermanentFailure) {
		return false
	}
	return err != nil && currentRetries < maxRetries && isTransient(err)
}
