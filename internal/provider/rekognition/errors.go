package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates that the image payload was rejected by Rekognition
	ErrInvalidImage = errors.New("invalid image payload")

	// ErrThrottled indicates that Rekognition throttled the request
	ErrThrottled = errors.New("rekognition request throttled")
)
