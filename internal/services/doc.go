// Package services provides shared helpers for pipeline stages: sentinel
// error markers for failure classification and context annotations for
// structured logging.
package services
