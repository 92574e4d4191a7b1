//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/user"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "storefront",
				"POSTGRES_PASSWORD": "storefront",
				"POSTGRES_DB":       "storefront",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ctr.Terminate(context.Background())
	})

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://storefront:storefront@%s:%s/storefront?sslmode=disable", host, port.Port())
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

type fixture struct {
	pool     *pgxpool.Pool
	users    *UserRepository
	products *ProductRepository
	orders   *order.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := startPostgres(t)

	svc, err := order.NewService(NewOrderRepository(pool), tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)

	return &fixture{
		pool:     pool,
		users:    NewUserRepository(pool),
		products: NewProductRepository(pool),
		orders:   svc,
	}
}

func (f *fixture) user(t *testing.T, email string) *user.User {
	t.Helper()
	u := &user.User{Email: email, FirstName: "Test", LastName: "User", PasswordDigest: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) product(t *testing.T, name string) *product.Product {
	t.Helper()
	p := &product.Product{Name: name, Price: decimal.RequireFromString("10.00"), Category: "test"}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "lifecycle@example.com")
	p1 := f.product(t, "Widget")
	p2 := f.product(t, "Gadget")

	active, err := f.orders.Create(ctx, u.ID, order.StatusActive)
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, u.ID, order.StatusActive)
	var conflict *order.ConflictError
	require.ErrorAs(t, err, &conflict)

	done, err := f.orders.Create(ctx, u.ID, order.StatusComplete)
	require.NoError(t, err)

	_, err = f.orders.Update(ctx, done.ID, u.ID, order.StatusActive)
	require.ErrorAs(t, err, &conflict)

	current, err := f.orders.FindCurrentByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, current, "active order without items is not visible")

	_, err = f.orders.AddProduct(ctx, active.ID, p1.ID, 2)
	require.NoError(t, err)
	_, err = f.orders.AddProduct(ctx, active.ID, p2.ID, 3)
	require.NoError(t, err)

	current, err = f.orders.FindCurrentByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, active.ID, current.ID)
	assert.Equal(t, []order.Item{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 3},
	}, current.Products)

	var invalid *order.InvalidStateError
	_, err = f.orders.AddProduct(ctx, done.ID, p1.ID, 1)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, order.StatusComplete, invalid.Status)

	var notFound *order.NotFoundError
	_, err = f.orders.AddProduct(ctx, active.ID, p1.ID+1000, 1)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, order.EntityProduct, notFound.Entity)

	_, err = f.orders.AddProduct(ctx, active.ID+1000, p1.ID, 1)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, order.EntityOrder, notFound.Entity)

	_, err = f.orders.Update(ctx, active.ID, u.ID, order.StatusComplete)
	require.NoError(t, err)

	complete, err := f.orders.FindCompleteByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, complete, 1, "completed order without items is not visible")
	assert.Equal(t, active.ID, complete[0].ID)
	assert.Len(t, complete[0].Products, 2)

	_, err = f.orders.Update(ctx, 999999, u.ID, order.StatusComplete)
	require.ErrorAs(t, err, &notFound)
}

func TestOrderCreate_ConcurrentActive(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "race@example.com")

	const workers = 20
	var created, conflicts atomic.Int32

	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			_, err := f.orders.Create(context.Background(), u.ID, order.StatusActive)
			var conflict *order.ConflictError
			switch {
			case err == nil:
				created.Add(1)
			case errors.As(err, &conflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())

	var active int
	require.NoError(t, f.pool.QueryRow(context.Background(),
		`SELECT count(*) FROM orders WHERE user_id = $1 AND status = 'active'`, u.ID,
	).Scan(&active))
	assert.Equal(t, 1, active)
}

func TestOrderIndexBackstop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "backstop@example.com")

	_, err := f.pool.Exec(ctx, `INSERT INTO orders (user_id, status) VALUES ($1, 'active')`, u.ID)
	require.NoError(t, err)

	// Bypass the service check and go straight to the transaction insert.
	repo := NewOrderRepository(f.pool)
	err = repo.InTx(ctx, func(ctx context.Context, tx order.Tx) error {
		_, err := tx.Insert(ctx, u.ID, order.StatusActive)
		return err
	})
	require.ErrorIs(t, err, order.ErrActiveOrderExists)
}

func TestOrderCreate_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Create(context.Background(), 424242, order.StatusComplete)
	var notFound *order.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, order.EntityUser, notFound.Entity)
}

func TestUserRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "repo@example.com")
	assert.NotZero(t, u.ID)

	err := f.users.Create(ctx, &user.User{Email: "repo@example.com", PasswordDigest: "y"})
	require.ErrorIs(t, err, user.ErrEmailTaken)

	got, err := f.users.GetByEmail(ctx, "repo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "x", got.PasswordDigest)

	got, err = f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PasswordDigest)

	_, err = f.users.Delete(ctx, u.ID)
	require.NoError(t, err)
	_, err = f.users.GetByID(ctx, u.ID)
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestProductRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.product(t, "Widget")
	other := &product.Product{Name: "Cake", Price: decimal.RequireFromString("4.50"), Category: "Cake"}
	require.NoError(t, f.products.Create(ctx, other))

	all, err := f.products.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cakes, err := f.products.List(ctx, "Cake")
	require.NoError(t, err)
	require.Len(t, cakes, 1)
	assert.True(t, decimal.RequireFromString("4.50").Equal(cakes[0].Price))

	_, err = f.products.Delete(ctx, p.ID)
	require.NoError(t, err)
	_, err = f.products.GetByID(ctx, p.ID)
	require.ErrorIs(t, err, product.ErrNotFound)

	u := f.user(t, "buyer@example.com")
	o, err := f.orders.Create(ctx, u.ID, order.StatusActive)
	require.NoError(t, err)
	_, err = f.orders.AddProduct(ctx, o.ID, other.ID, 1)
	require.NoError(t, err)
	_, err = f.products.Delete(ctx, other.ID)
	require.ErrorIs(t, err, product.ErrInUse)
}
