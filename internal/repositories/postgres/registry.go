package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

// Open connects to Postgres and returns the gorm handle used by the registry.
// TranslateError is enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey and can be categorised as conflicts.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	return db, nil
}

// Migrate applies the relational schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Product{},
		&domain.ProductImage{},
		&domain.Cart{},
		&domain.CartItem{},
		&domain.Address{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Favorite{},
		&domain.WebhookFailure{},
	)
}

// Registry implements repositories.Registry over a gorm connection.
type Registry struct {
	db *gorm.DB
}

// NewRegistry wraps an open gorm handle in a repository registry.
func NewRegistry(db *gorm.DB) (*Registry, error) {
	if db == nil {
		return nil, errors.New("postgres: db handle is required")
	}
	return &Registry{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *Registry) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies database connectivity for readiness probes.
func (r *Registry) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// RunInTx executes fn against a registry bound to a single transaction.
func (r *Registry) RunInTx(ctx context.Context, fn func(tx repositories.Registry) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Registry{db: tx})
	})
}

func (r *Registry) Users() repositories.UserRepository       { return &userRepository{db: r.db} }
func (r *Registry) Products() repositories.ProductRepository { return &productRepository{db: r.db} }
func (r *Registry) Carts() repositories.CartRepository       { return &cartRepository{db: r.db} }
func (r *Registry) Addresses() repositories.AddressRepository {
	return &addressRepository{db: r.db}
}
func (r *Registry) Orders() repositories.OrderRepository { return &orderRepository{db: r.db} }
func (r *Registry) Favorites() repositories.FavoriteRepository {
	return &favoriteRepository{db: r.db}
}
func (r *Registry) WebhookFailures() repositories.WebhookFailureRepository {
	return &webhookFailureRepository{db: r.db}
}

// wrapError maps gorm errors onto the repository error taxonomy.
func wrapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.NewNotFound(op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.NewConflict(op, err)
	default:
		return &repositories.Error{Op: op, Err: err}
	}
}
