package util

import "errors"

var (
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizNotPublished     = errors.New("quiz not published or not accessible")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptLimitExceeded = errors.New("attempt limit reached")
	ErrAttemptCompleted     = errors.New("attempt already submitted")
	ErrAttemptExpired       = errors.New("attempt time limit exceeded")
	ErrAttemptNotCompleted  = errors.New("attempt not completed yet")
	ErrPermissionDenied     = errors.New("permission denied")
)
