package output

import (
	"context"

	"github.com/crimson-sun/babylog/internal/model"
)

// Output defines the interface for analytics event destinations.
type Output interface {
	Write(ctx context.Context, event model.Event) error
	Close() error
}
