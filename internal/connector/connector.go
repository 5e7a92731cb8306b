package connector

import (
	"context"

	"github.com/crimson-sun/babylog/internal/model"
)

// Connector defines the interface all record source connectors must implement.
type Connector interface {
	// Load reads the whole export and returns its rows in file order.
	Load(ctx context.Context, cfg ConnectorConfig) ([]model.RawRecord, error)
}

// ConnectorConfig holds source-specific settings.
type ConnectorConfig struct {
	Provider string
	Path     string
	Extra    map[string]string
}
