package recordstore

import (
	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

// NewStore builds the record store selected by the config. The memory
// backend needs no connection string; the SQL backends pass it through
// to their drivers.
func NewStore(cfg *contract.Config, resolver contract.TeamResolver) (contract.RecordStore, error) {
	if cfg.StoreBackend == schema.MemoryBackend {
		return NewMemoryStore(resolver), nil
	}
	return NewSQLStore(cfg.StoreBackend, cfg.StoreDBConnect, resolver)
}
