// Package testutil provides test fixtures shared across packages: a migrated
// in-memory journal and a fluent builder for candidate sets.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/Veraticus/spice-reconcile/internal/storage"
)

// TestDB is a migrated in-memory journal scoped to one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory journal. It handles migrations and
// cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	session := db.StartSession("localhost:8101")
//	db.Record(session, protocol.SelectCandidate{Generation: 1})
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// StartSession starts a journal session or fails the test.
func (db *TestDB) StartSession(server string) string {
	db.t.Helper()
	id, err := db.Storage.StartSession(context.Background(), server)
	if err != nil {
		db.t.Fatalf("failed to start session: %v", err)
	}
	return id
}

// ReceiveGeneration journals a received candidate set or fails the test.
func (db *TestDB) ReceiveGeneration(sessionID string, set model.CandidateSet) {
	db.t.Helper()
	if err := db.Storage.RecordGeneration(context.Background(), sessionID, set); err != nil {
		db.t.Fatalf("failed to record generation %d: %v", set.Generation, err)
	}
}

// Record journals outbound messages in order or fails the test.
func (db *TestDB) Record(sessionID string, msgs ...protocol.Message) {
	db.t.Helper()
	for _, msg := range msgs {
		if err := db.Storage.RecordMessage(context.Background(), sessionID, msg); err != nil {
			db.t.Fatalf("failed to record %s: %v", msg.Type(), err)
		}
	}
}
