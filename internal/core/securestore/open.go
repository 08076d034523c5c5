package securestore

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/badgerdb"
	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/credvault"
	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/keyring"
	"github.com/dep2p/go-keyvault/internal/core/securestore/backend/memory"
	"github.com/dep2p/go-keyvault/internal/core/storage/engine"
	"github.com/dep2p/go-keyvault/pkg/interfaces"
)

// OpenBackend 按配置打开后端
func OpenBackend(cfg *Config) (interfaces.Backend, error) {
	switch cfg.Backend {
	case BackendMemory:
		return memory.New(), nil

	case BackendCredVault:
		return credvault.Open(credvault.Config{
			ServicePrefix: cfg.CredVaultService,
			Namespace:     cfg.Namespace,
		})

	case BackendKeyring:
		return keyring.Open(keyring.Config{
			Namespace: cfg.Namespace,
			Parent:    cfg.KeyringParent,
		})

	case BackendBadger:
		ecfg := engine.InMemoryConfig()
		if !cfg.BadgerInMemory {
			ecfg = engine.DefaultConfig(cfg.BadgerPath)
			ecfg.SyncWrites = cfg.BadgerSyncWrites
		}
		return badgerdb.Open(ecfg, cfg.Namespace)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Open 按配置打开后端并创建存储
//
// 创建失败时已打开的后端会被关闭。
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b, err := OpenBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}

	s, err := New(ctx, b, cfg, opts...)
	if err != nil {
		return nil, multierr.Append(err, b.Close())
	}
	return s, nil
}
