//go:build integration

// Integration tests run the repository and issuance service against a throwaway
// PostgreSQL container.
//
// Usage:
//
//	go test -v -race -tags integration ./internal/repository/...
package repository_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/fairyhunter13/promo-coupon-service/pkg/database"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=testpass",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=coupon_test",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	databaseURL := fmt.Sprintf("postgres://testuser:testpass@%s/coupon_test?sslmode=disable",
		resource.GetHostPort("5432/tcp"))

	_ = resource.Expire(120) // Tell docker to kill the container after 120 seconds

	pool.MaxWait = 120 * time.Second
	if err = pool.Retry(func() error {
		var err error
		testPool, err = database.NewPool(context.Background(), databaseURL, 1)
		return err
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	// twice: the schema must be idempotent
	for i := 0; i < 2; i++ {
		if err := database.EnsureSchema(context.Background(), testPool); err != nil {
			log.Fatalf("Could not apply schema: %s", err)
		}
	}

	code := m.Run()

	testPool.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}

	os.Exit(code)
}

func cleanupTables(t *testing.T) {
	t.Helper()
	if _, err := testPool.Exec(context.Background(), "TRUNCATE TABLE coupons RESTART IDENTITY"); err != nil {
		t.Fatalf("Failed to cleanup tables: %v", err)
	}
}

func countCoupons(t *testing.T, email, website string) int {
	t.Helper()
	var n int
	err := testPool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM coupons WHERE email = $1 AND website = $2", email, website).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count coupons: %v", err)
	}
	return n
}
