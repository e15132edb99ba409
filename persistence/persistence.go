package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	bunpersistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-posts"
	"github.com/goliatone/go-posts/repository"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
	"github.com/uptrace/bun/schema"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

const defaultPingTimeout = 5 * time.Second

type Options struct {
	DatabaseURL   string
	MongoDatabase string
	PingTimeout   time.Duration
	Debug         bool
	Logger        posts.Logger
}

// Store is an opened backend and its repositories
type Store struct {
	Driver string
	Repo   posts.RepositoryManager
	DB     *bun.DB

	closers []func(context.Context) error
}

// Close releases the underlying connections
func (s *Store) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DriverFor picks the backend from the DSN scheme
func DriverFor(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return DriverMongo
	default:
		return DriverSQLite
	}
}

// Open connects to the configured backend, migrates it and returns the
// repositories
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = posts.DefaultLogger()
	}

	if opts.PingTimeout <= 0 {
		opts.PingTimeout = defaultPingTimeout
	}

	driver := DriverFor(opts.DatabaseURL)
	opts.Logger.Info("opening store", "driver", driver)

	switch driver {
	case DriverMongo:
		return openMongo(ctx, opts)
	case DriverPostgres:
		sqldb, err := sql.Open("pgx", opts.DatabaseURL)
		if err != nil {
			return nil, wrapOpenError(err, driver)
		}
		return openSQL(ctx, sqldb, pgdialect.New(), driver, opts)
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, opts.DatabaseURL)
		if err != nil {
			return nil, wrapOpenError(err, driver)
		}
		// sqlite serializes writers anyway, one connection avoids lock errors
		// and keeps the foreign_keys pragma, which is per connection
		sqldb.SetMaxOpenConns(1)
		sqldb.SetConnMaxLifetime(0)
		return openSQL(ctx, sqldb, sqlitedialect.New(), driver, opts)
	}
}

// clientConfig feeds the bun persistence client
type clientConfig struct {
	driver      string
	server      string
	pingTimeout time.Duration
	debug       bool
}

func (c clientConfig) GetDebug() bool                { return c.debug }
func (c clientConfig) GetDriver() string             { return c.driver }
func (c clientConfig) GetServer() string             { return c.server }
func (c clientConfig) GetDatabase() string           { return "" }
func (c clientConfig) GetPingTimeout() time.Duration { return c.pingTimeout }
func (c clientConfig) GetOtelIdentifier() string     { return "" }

func openSQL(ctx context.Context, sqldb *sql.DB, dialect schema.Dialect, driver string, opts Options) (*Store, error) {
	bunpersistence.RegisterModel((*posts.User)(nil), (*posts.Post)(nil))

	client, err := bunpersistence.New(clientConfig{
		driver:      driver,
		server:      opts.DatabaseURL,
		pingTimeout: opts.PingTimeout,
		debug:       opts.Debug,
	}, sqldb, dialect)
	if err != nil {
		_ = sqldb.Close()
		return nil, wrapOpenError(err, driver)
	}

	client.SetLogger(func(format string, a ...any) {
		opts.Logger.Debug(strings.TrimSpace(fmt.Sprintf(format, a...)))
	})

	db, ok := client.DB().(*bun.DB)
	if !ok {
		_ = sqldb.Close()
		return nil, wrapOpenError(errors.New("unexpected bun handle"), driver)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, wrapOpenError(err, driver)
		}
	}

	fsys, err := posts.GetDialectMigrationsFS(driver)
	if err != nil {
		_ = db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "migrations not found for "+driver)
	}

	client.RegisterSQLMigrations(fsys)
	if err := client.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to run migrations")
	}
	logReport(opts.Logger, client.Report())

	repo := posts.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Driver: driver,
		Repo:   repo,
		DB:     db,
		closers: []func(context.Context) error{
			func(context.Context) error { return db.Close() },
		},
	}, nil
}

// Migrate applies the embedded migrations for the dialect
func Migrate(ctx context.Context, db *bun.DB, dialect string, logger posts.Logger) error {
	if logger == nil {
		logger = posts.DefaultLogger()
	}

	fsys, err := posts.GetDialectMigrationsFS(dialect)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "migrations not found for "+dialect)
	}

	migrations := (&bunpersistence.Migrations{}).RegisterSQLMigrations(fsys)
	if err := migrations.Migrate(ctx, db); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to run migrations")
	}

	logReport(logger, migrations.Report())
	return nil
}

func logReport(logger posts.Logger, group *migrate.MigrationGroup) {
	if group == nil || group.IsZero() {
		logger.Debug("no new migrations to run")
		return
	}
	logger.Info("migrated", "group", group.String())
}

func openMongo(ctx context.Context, opts Options) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.DatabaseURL))
	if err != nil {
		return nil, wrapOpenError(err, DriverMongo)
	}

	disconnect := func(ctx context.Context) error {
		return client.Disconnect(ctx)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = disconnect(ctx)
		return nil, wrapOpenError(err, DriverMongo)
	}

	name := opts.MongoDatabase
	if name == "" {
		name = "posts"
	}

	repo := repository.NewMongoRepositoryManager(client.Database(name))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = disconnect(ctx)
		return nil, err
	}

	return &Store{
		Driver:  DriverMongo,
		Repo:    repo,
		closers: []func(context.Context) error{disconnect},
	}, nil
}

func wrapOpenError(err error, driver string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open "+driver+" store").
		WithTextCode(posts.TextCodeStoreFailed)
}
