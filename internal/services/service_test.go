package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/notify"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/repo"
)

// newTestDB opens a throwaway sqlite database with the full schema and the
// Diabetes catalog seeded. It returns the handle and the seeded disease.
func newTestDB(t *testing.T) (*gorm.DB, *domain.Disease) {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	d, err := repo.SeedDiabetesCatalog(context.Background(), db)
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return db, d
}

// testUserSeq keeps emails unique across users created in the same database,
// which enforces a unique email constraint.
var testUserSeq atomic.Int64

func newTestUser(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, fmt.Sprintf("patient%d@example.com", testUserSeq.Add(1)), "Pat Example")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// recordingMailer captures completion-report sends for assertions.
type recordingMailer struct {
	mu    sync.Mutex
	calls []recordedSend
	err   error
}

type recordedSend struct {
	Email   string
	Name    string
	Disease string
	Answers map[string][]notify.QA
}

func (m *recordingMailer) SendCompletionReport(_ context.Context, email, name, disease string, answers map[string][]notify.QA) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedSend{Email: email, Name: name, Disease: disease, Answers: answers})
	return m.err
}

func (m *recordingMailer) sends() []recordedSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recordedSend, len(m.calls))
	copy(out, m.calls)
	return out
}
