package app

import (
	"github.com/talkincode/stockboard/config"
	"github.com/talkincode/stockboard/internal/inventory"
	"github.com/talkincode/stockboard/internal/repository"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the persistence backend
type StoreProvider interface {
	Store() repository.Store
}

// InventoryProvider provides the catalog and ledger services
type InventoryProvider interface {
	Catalog() *inventory.Catalog
	Ledger() *inventory.Ledger
}

// AppContext combines all provider interfaces for full application context.
// Handlers should depend on specific providers or this combined interface.
type AppContext interface {
	ConfigProvider
	StoreProvider
	InventoryProvider

	// MigrateDB creates or updates the SQL schema; a no-op for embedded stores
	MigrateDB(track bool) error
	// InitDb wipes the store and recreates an empty schema
	InitDb() error
	// Release closes the store
	Release()
}
