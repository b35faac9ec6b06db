package queue

import "errors"

// ErrorClassifier lets errors declare their classification for status
// mapping. Kinds "validation", "configuration", and "not_found" map to
// StatusReview; everything else maps to StatusFailed.
type ErrorClassifier interface {
	ErrorKind() string
}

// FailureStatus maps a stage error to the status the workflow manager
// should persist after the stage fails.
func FailureStatus(err error) Status {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		switch classifier.ErrorKind() {
		case "validation", "configuration", "not_found":
			return StatusReview
		}
	}
	return StatusFailed
}
