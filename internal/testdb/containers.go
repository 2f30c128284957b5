package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgis/postgis:15-3.4-alpine"
	redisImage    = "redis:7-alpine"

	postgresUser     = "user"
	postgresPassword = "password"
	postgresDB       = "treetracker"
)

// Postgres is a PostGIS container with the db/pg schema applied.
type Postgres struct {
	DB  database.DB
	URL string
}

// NewPostgres starts a PostGIS container and migrates it. The test is skipped
// under -short or when no container runtime is available.
func NewPostgres(t *testing.T) *Postgres {
	t.Helper()
	skipShort(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}

	container := start(ctx, t, req)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, host, port.Port(), postgresDB)

	db, err := database.Open(url, database.PoolConfig{MaxOpenConns: 4}, Logger())
	require.NoError(t, err)
	t.Cleanup(func() { db.SQLDB().Close() })

	require.Eventually(t, func() bool {
		return db.SQLDB().PingContext(ctx) == nil
	}, 30*time.Second, 250*time.Millisecond, "postgres never accepted connections")

	service := database.NewMigrationService(Logger(), &database.MigrationConfig{
		MigrationFolderPath: schemaFolder(t),
	})
	require.NoError(t, service.MigratePostgres(db))

	return &Postgres{DB: db, URL: url}
}

// Exec runs fixture statements, failing the test on the first error.
func (p *Postgres) Exec(t *testing.T, statements ...string) {
	t.Helper()
	for _, statement := range statements {
		_, err := p.DB.ExecContext(context.Background(), statement)
		require.NoError(t, err, statement)
	}
}

// Count returns the number of rows of table.
func (p *Postgres) Count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, p.DB.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM "+table))
	return n
}

// Redis is a redis container address.
type Redis struct {
	Host string
	Port int
}

func NewRedis(t *testing.T) *Redis {
	t.Helper()
	skipShort(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(30 * time.Second),
	}

	container := start(ctx, t, req)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	n, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return &Redis{Host: host, Port: n}
}

func skipShort(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
}

func start(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if container != nil {
			_ = container.Terminate(ctx)
		}
		t.Skipf("container runtime unavailable for %s: %v", req.Image, err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate %s: %v", req.Image, err)
		}
	})

	return container
}

// schemaFolder locates db/pg from the package directory of the running test.
func schemaFolder(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "db", "pg")
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above the test directory")
		dir = parent
	}
}
