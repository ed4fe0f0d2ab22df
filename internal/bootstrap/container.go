// Package bootstrap wires repositories and services for the souq binaries.
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/souq-backoffice/internal/accounts"
	"github.com/angelmondragon/souq-backoffice/internal/cart"
	"github.com/angelmondragon/souq-backoffice/internal/catalog"
	"github.com/angelmondragon/souq-backoffice/internal/orders"
	"github.com/angelmondragon/souq-backoffice/internal/payments"
	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
	"github.com/angelmondragon/souq-backoffice/pkg/redis"
	"github.com/angelmondragon/souq-backoffice/pkg/security"
)

// Params carries the shared clients. Redis and Registerer are optional: a nil
// Redis merges carts without the cross-process lock, a nil Registerer
// disables domain metrics.
type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Redis      *redis.Client
	Registerer prometheus.Registerer
}

// Container holds one instance of every domain service.
type Container struct {
	Accounts accounts.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Orders   orders.Service
	Payments payments.Service
	Metrics  *metrics.Domain
}

// New builds the services over the provided clients.
func New(params Params) (*Container, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	cfg := params.Config
	conn := params.DB.DB()
	domain := metrics.NewDomain(params.Registerer)

	accountsSvc, err := accounts.NewService(accounts.ServiceParams{
		Users:     accounts.NewRepository(conn),
		Addresses: accounts.NewAddressRepo(conn),
		TxRunner:  params.DB,
		Hasher:    security.NewHasher(cfg.Password),
		Orders:    cfg.Orders,
		Logger:    params.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("accounts service: %w", err)
	}

	catalogRepo := catalog.NewRepository(conn)
	catalogSvc, err := catalog.NewService(catalogRepo, params.DB, cfg.Catalog, params.Logger)
	if err != nil {
		return nil, fmt.Errorf("catalog service: %w", err)
	}

	var lock cart.Locker
	if params.Redis != nil && cfg.FeatureFlags.MergeLock {
		lock, err = cart.NewRedisLocker(params.Redis, cfg.Cart.MergeLockTTL)
		if err != nil {
			return nil, fmt.Errorf("cart merge lock: %w", err)
		}
	}
	carts := cart.NewRepository(conn)
	items := cart.NewItemRepository(conn)
	cartSvc, err := cart.NewService(cart.ServiceParams{
		Carts:    carts,
		Items:    items,
		Products: catalogRepo,
		TxRunner: params.DB,
		Lock:     lock,
		Metrics:  domain,
		Logger:   params.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	checkout, err := cart.NewCheckoutStore(carts, items)
	if err != nil {
		return nil, fmt.Errorf("checkout store: %w", err)
	}
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(conn),
		TxRunner: params.DB,
		Sales:    catalogSvc,
		Carts:    checkout,
		Config:   cfg.Orders,
		Metrics:  domain,
		Logger:   params.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		Repo:     payments.NewRepository(conn),
		TxRunner: params.DB,
		Config:   cfg.Payments,
		Metrics:  domain,
		Logger:   params.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("payments service: %w", err)
	}

	return &Container{
		Accounts: accountsSvc,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Orders:   ordersSvc,
		Payments: paymentsSvc,
		Metrics:  domain,
	}, nil
}
