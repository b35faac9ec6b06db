// Package stage defines the contract between the workflow manager and
// the pipeline stages that advance queue items.
package stage

import (
	"context"

	"creatorpack/internal/queue"
)

// Handler describes the contract the workflow manager needs from each
// stage.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}
