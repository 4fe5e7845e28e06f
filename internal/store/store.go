// FilePath: internal/store/store.go
package store

import (
	"context"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

// Store persists device definitions across restarts. Save overwrites
// the previous snapshot as a self-consistent unit; runtime history and
// status are never stored. Load returns an empty map when no snapshot
// exists, and recovers from a corrupt one by warning and returning
// empty rather than failing startup.
type Store interface {
	Save(ctx context.Context, definitions map[string]models.DeviceDefinition) error
	Load(ctx context.Context) (map[string]models.DeviceDefinition, error)
	Close() error
}
