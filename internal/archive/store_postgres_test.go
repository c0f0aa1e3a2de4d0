package archive_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shiksha-ai/shiksha-server/internal/archive"
)

// startPostgres spins up a throwaway PostgreSQL container and returns a
// connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shiksha_test"),
		tcpostgres.WithUsername("shiksha"),
		tcpostgres.WithPassword("shiksha"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool := startPostgres(t)

	store, err := archive.NewPostgresStore(ctx, pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	id, err := store.Save(ctx, archive.Record{
		ClientID:       "school-1",
		Kind:           "questions",
		Subject:        "Science",
		Grade:          5,
		Topic:          "States of Matter",
		CurriculumCode: "S5-1-1",
		Model:          "claude-sonnet-4-6",
		Fingerprint:    "deadbeef",
		Partial:        true,
		TokensUsed:     340,
		Payload:        map[string]any{"requested": 5, "delivered": 3},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Subject != "Science" || got.Grade != 5 || !got.Partial {
		t.Errorf("got %+v", got)
	}
	if got.Payload["requested"] != float64(5) {
		t.Errorf("payload = %v", got.Payload)
	}

	if _, err := store.Get(ctx, "00000000-0000-0000-0000-000000000000"); err == nil {
		t.Error("Get() should fail for an unknown id")
	}
}

func TestPostgresStore_List(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool := startPostgres(t)

	store, err := archive.NewPostgresStore(ctx, pool)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Now().Add(-time.Hour)
	for i, rec := range []archive.Record{
		{Kind: "content", Subject: "Mathematics", Grade: 2, Topic: "old"},
		{Kind: "content", Subject: "Mathematics", Grade: 2, Topic: "new"},
		{Kind: "explanation", Subject: "English", Grade: 3, Topic: "other"},
	} {
		rec.CurriculumCode = "X"
		rec.Model = "mock"
		rec.Fingerprint = "f"
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := store.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.List(ctx, archive.ListFilter{Subject: "Mathematics", Grade: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Topic != "new" {
		t.Errorf("newest first expected, got %s", got[0].Topic)
	}
}

func TestPostgresEventLogger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool := startPostgres(t)

	logger, err := archive.NewPostgresEventLogger(ctx, pool)
	if err != nil {
		t.Fatalf("NewPostgresEventLogger() error = %v", err)
	}

	if err := logger.LogEvent(ctx, archive.Event{
		ClientID:  "school-1",
		EventType: "generation_completed",
		Data:      map[string]any{"kind": "content"},
	}); err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	var n int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM generation_events`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("events in table = %d, want 1", n)
	}
}
