package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/sandbox"
	"github.com/example/storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	kv       store.KVStore
	session  *session.Store
	catalog  *Catalog
	orders   *Orders
	identity *Identity
	sandbox  *sandbox.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv, err := sandbox.New(sandbox.DefaultFixtures(), auth.NewJWTService("integration-secret", time.Hour))
	require.NoError(t, err)
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(httpSrv.Close)

	kv := store.NewMemoryStore()
	creds := session.NewCredentialStore(kv)
	base := New(httpSrv.URL+"/api", creds)
	identity := NewIdentity(base)

	return &testEnv{
		kv:       kv,
		session:  session.New(identity, creds),
		catalog:  NewCatalog(base),
		orders:   NewOrders(base),
		identity: identity,
		sandbox:  srv,
	}
}

func TestIntegration_LoginFailureLeavesSessionUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.session.Login(context.Background(), "demo@example.com", "wrong-password")

	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.False(t, env.session.IsAuthenticated())
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.session.Login(ctx, "demo@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Demo Shopper", user.Name)

	claims, ok := env.session.Claims(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims.UserID)

	// A fresh session over the same storage restores from the credential
	restored := session.New(env.identity, session.NewCredentialStore(env.kv))
	require.NoError(t, restored.Restore(ctx))
	assert.True(t, restored.IsAuthenticated())

	require.NoError(t, env.session.Logout(ctx))
	assert.False(t, env.session.IsAuthenticated())

	// Logout clears the durable credential
	_, stored, err := env.kv.Get(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestIntegration_RestoreRevokedCredentialClearsIt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.session.Login(ctx, "demo@example.com", "password123")
	require.NoError(t, err)
	token, _, err := env.kv.Get(ctx, session.TokenKey)
	require.NoError(t, err)

	require.NoError(t, env.identity.Logout(ctx))

	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, session.TokenKey, token))
	creds := session.NewCredentialStore(kv)
	restored := session.New(NewIdentity(New(env.catalog.c.BaseURL(), creds)), creds)

	err = restored.Restore(ctx)

	require.Error(t, err)
	assert.Equal(t, "Token has been revoked", session.Message(err, ""))
	_, ok, err := kv.Get(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntegration_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.session.Register(context.Background(), session.Registration{
		Name: "Copy", Email: "demo@example.com", Password: "password123", ConfirmPassword: "password123",
	})

	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())
	assert.False(t, env.session.IsAuthenticated())
}

func TestIntegration_CheckoutPlacesOrderAndClearsCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.session.Login(ctx, "demo@example.com", "password123")
	require.NoError(t, err)

	serum, err := env.catalog.Product(ctx, 1)
	require.NoError(t, err)
	scarf, err := env.catalog.Product(ctx, 5)
	require.NoError(t, err)

	c := cart.Open(ctx, env.kv)
	require.NoError(t, c.Add(ctx, serum, 2))
	require.NoError(t, c.AddOne(ctx, scarf))

	f := checkout.NewForm("Demo Shopper", "demo@example.com")
	f.Phone = "555-0100"
	f.Address = "1 Main St"
	f.City = "Portland"
	f.State = "OR"
	f.ZipCode = "97201"
	f.Country = "US"
	f.CardName = "Demo Shopper"
	f.CardNumber = "4242 4242 4242 4242"
	f.CardExpiry = "01/30"
	f.CardCVV = "321"

	conf, err := checkout.NewService(c, env.orders).Place(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	o, err := env.orders.Get(ctx, conf.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusProcessing, o.Status)
	assert.Equal(t, "93.47", o.Total.StringFixed(2))

	list, err := env.orders.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalItems)

	cancelled, err := env.orders.Cancel(ctx, conf.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)

	_, err = env.orders.Cancel(ctx, conf.ID)
	assert.ErrorIs(t, err, orders.ErrNotCancellable)
}

func TestIntegration_CatalogBrowsing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	categories, err := env.catalog.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)

	all, err := env.catalog.AllProducts(ctx, DefaultProductQuery())
	require.NoError(t, err)
	assert.Len(t, all, 9)

	page, err := env.catalog.Search(ctx, "serum", DefaultProductQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)

	_, err = env.catalog.Product(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}
