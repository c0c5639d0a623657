// Package app wires the storefront stores and service clients together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/storefront/internal/activity"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/session"
)

// App owns every store for the lifetime of the process
type App struct {
	Config      config.Config
	Storage     store.KVStore
	Credentials *session.CredentialStore
	Session     *session.Store
	Cart        *cart.Store
	Catalog     *client.Catalog
	Orders      *client.Orders
	Checkout    *checkout.Service

	producer *kafka.Producer
}

// New opens storage and builds the app from cfg
func New(ctx context.Context, cfg config.Config) (*App, error) {
	kv, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var producer *kafka.Producer
	var publisher activity.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = producer
		log.Printf("[App] Publishing activity to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}

	a := NewWithStorage(ctx, cfg, kv, publisher)
	a.producer = producer
	return a, nil
}

// NewWithStorage builds the app over an already open store. publisher may
// be nil to disable activity publishing. A persisted credential is
// restored before returning; failure to restore leaves the session signed
// out.
func NewWithStorage(ctx context.Context, cfg config.Config, kv store.KVStore, publisher activity.Publisher) *App {
	var recorder *activity.Recorder
	if publisher != nil {
		recorder = activity.NewRecorder(publisher, cfg.ClientID)
	}

	creds := session.NewCredentialStore(kv)
	base := client.New(cfg.APIURL, creds, client.WithTimeout(cfg.HTTPTimeout))
	orders := client.NewOrders(base)
	c := cart.Open(ctx, kv, cart.WithActivity(recorder))

	a := &App{
		Config:      cfg,
		Storage:     kv,
		Credentials: creds,
		Session:     session.New(client.NewIdentity(base), creds, session.WithActivity(recorder)),
		Cart:        c,
		Catalog:     client.NewCatalog(base),
		Orders:      orders,
		Checkout:    checkout.NewService(c, orders, checkout.WithActivity(recorder)),
	}

	if err := a.Session.Restore(ctx); err != nil {
		log.Printf("[App] Session not restored: %v", err)
	}
	return a
}

// Close flushes activity and releases storage
func (a *App) Close() error {
	var errs []error
	if a.producer != nil {
		errs = append(errs, a.producer.Close())
	}
	errs = append(errs, a.Storage.Close())
	return errors.Join(errs...)
}

// Listing is the visible product list plus the categories it was
// resolved against
type Listing struct {
	Products   []catalog.Product
	Categories []catalog.Category
}

// Browse fetches the catalog and runs the filter pipeline. Category
// selectors may be IDs or names; both resolve to canonical labels first.
func (a *App) Browse(ctx context.Context, criteria catalog.Criteria) (Listing, error) {
	if err := criteria.Validate(); err != nil {
		return Listing{}, err
	}

	categories, err := a.Catalog.Categories(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("failed to load categories: %w", err)
	}
	products, err := a.Catalog.AllProducts(ctx, client.DefaultProductQuery())
	if err != nil {
		return Listing{}, fmt.Errorf("failed to load products: %w", err)
	}

	idx := catalog.NewCategoryIndex(categories)
	criteria.Category = idx.Label(criteria.Category)
	criteria.NavCategory = idx.Label(criteria.NavCategory)

	return Listing{
		Products:   catalog.Apply(products, criteria),
		Categories: idx.All(),
	}, nil
}

// AddToCart looks the product up and adds quantity units of it
func (a *App) AddToCart(ctx context.Context, productID int64, quantity int) (catalog.Product, error) {
	p, err := a.Catalog.Product(ctx, productID)
	if err != nil {
		return catalog.Product{}, err
	}
	if err := a.Cart.Add(ctx, p, quantity); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}
