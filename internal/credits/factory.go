package credits

import (
	"context"
	"fmt"

	"github.com/abhisek/examforge/internal/store"
)

// Config selects the ledger backend.
type Config struct {
	// Values: "sqlite", "tigerbeetle", "remote"
	Backend     string
	ClusterID   uint64
	Addresses   []string
	RemoteURL   string
	RemoteToken string
}

// New builds the configured Ledger. repo backs the "sqlite" ledger.
func New(ctx context.Context, cfg Config, repo store.CreditRepo) (Ledger, error) {
	switch cfg.Backend {
	case "", "sqlite":
		if repo == nil {
			return nil, fmt.Errorf("sqlite ledger requires a store")
		}
		return NewSQLLedger(repo), nil
	case "tigerbeetle":
		if len(cfg.Addresses) == 0 {
			return nil, fmt.Errorf("tigerbeetle ledger requires cluster addresses")
		}
		return NewTigerBeetleLedger(ctx, cfg.ClusterID, cfg.Addresses)
	case "remote":
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote ledger requires a service URL")
		}
		return NewRemoteLedger(cfg.RemoteURL, cfg.RemoteToken, nil), nil
	default:
		return nil, fmt.Errorf("unknown credit ledger backend: %q", cfg.Backend)
	}
}
