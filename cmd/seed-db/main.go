// Command seed-db loads a product catalog and a demo account into the
// storefront database.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/user"
	"github.com/xenking/storefront-api/internal/storage/postgres"
)

type options struct {
	DatabaseURL  string
	ProductsFile string
	DemoEmail    string
	DemoPassword string
	Pepper       string
}

func main() {
	var opts options
	flag.StringVar(&opts.DatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	flag.StringVar(&opts.ProductsFile, "products-file", "db/seed/products.json", "path to products JSON (.json or .json.gz)")
	flag.StringVar(&opts.DemoEmail, "demo-email", "demo@example.com", "demo account email, empty to skip")
	flag.StringVar(&opts.DemoPassword, "demo-password", "demo", "demo account password")
	flag.StringVar(&opts.Pepper, "password-pepper", os.Getenv("STOREFRONT_PASSWORD_PEPPER"), "password pepper, must match the API server")
	flag.Parse()

	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		if opts.DatabaseURL == "" {
			return errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		return run(ctx, lg, opts)
	})
}

func run(ctx context.Context, lg *zap.Logger, opts options) error {
	pool, err := postgres.NewPool(ctx, opts.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, lg, postgres.NewProductRepository(pool), opts.ProductsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if opts.DemoEmail != "" {
		accounts := user.NewService(postgres.NewUserRepository(pool), []byte(opts.Pepper), 0)
		if err := seedDemoUser(ctx, lg, accounts, opts.DemoEmail, opts.DemoPassword); err != nil {
			return errors.Wrap(err, "seed demo user")
		}
	}

	lg.Info("Seed completed")
	return nil
}

// seedProducts inserts catalog products whose name is not already present.
func seedProducts(ctx context.Context, lg *zap.Logger, repo product.Repository, path string) error {
	f, err := openCatalog(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	catalog, err := parseCatalog(f)
	if err != nil {
		return err
	}

	existing, err := repo.List(ctx, "")
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p.Name] = struct{}{}
	}

	var inserted int
	for i := range catalog {
		p := &catalog[i]
		if _, ok := seen[p.Name]; ok {
			continue
		}
		if err := repo.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "create product %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		inserted++
		lg.Debug("Created product", zap.Int64("id", p.ID), zap.String("name", p.Name))
	}

	lg.Info("Products seeded",
		zap.String("path", path),
		zap.Int("catalog", len(catalog)),
		zap.Int("inserted", inserted),
	)
	return nil
}

type registrar interface {
	Register(ctx context.Context, reg user.Registration) (*user.User, error)
}

func seedDemoUser(ctx context.Context, lg *zap.Logger, accounts registrar, email, password string) error {
	u, err := accounts.Register(ctx, user.Registration{
		Email:     email,
		FirstName: "Demo",
		LastName:  "User",
		Password:  password,
	})
	if errors.Is(err, user.ErrEmailTaken) {
		lg.Info("Demo user already exists", zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}
	lg.Info("Demo user created", zap.Int64("id", u.ID), zap.String("email", u.Email))
	return nil
}
