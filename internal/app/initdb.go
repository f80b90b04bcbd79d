package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// checkProducts seeds the default catalog when the store holds no products.
func (a *Application) checkProducts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := a.catalog.SeedDefaults(ctx)
	if err != nil {
		zap.L().Error("failed to seed default products", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("initialized default catalog", zap.Int("products", n))
	}
}
