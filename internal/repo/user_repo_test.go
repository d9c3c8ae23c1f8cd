package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
)

func TestCreateAndGetUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "jane@example.com", "Jane Doe")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if u.OnboardingCompleted {
		t.Fatalf("new user must start with onboarding incomplete")
	}
	if u.DataStatus != domain.DataStatusDraft {
		t.Fatalf("DataStatus = %q, want %q", u.DataStatus, domain.DataStatusDraft)
	}

	got, err := GetUser(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "jane@example.com" || got.FullName != "Jane Doe" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, err := GetUser(ctx, db, "no-such-user"); err == nil {
		t.Fatalf("expected error for missing user")
	}
}

func TestMarkOnboardingCompleted_OnceAndOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "once@example.com", "Once")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	now := time.Now().UTC()
	won, err := MarkOnboardingCompleted(ctx, db, u.ID, now, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("MarkOnboardingCompleted: %v", err)
	}
	if !won {
		t.Fatalf("first transition must win")
	}

	got, err := GetUser(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !got.OnboardingCompleted {
		t.Fatalf("flag not set")
	}
	if got.OnboardingCompletedAt == nil {
		t.Fatalf("completion timestamp not set")
	}
	if got.DataStatus != domain.DataStatusDraft {
		t.Fatalf("DataStatus = %q, want draft", got.DataStatus)
	}
	if got.DataEditingExpiresAt == nil {
		t.Fatalf("editing expiry not set")
	}
	wantExpiry := now.Add(7 * 24 * time.Hour)
	if d := got.DataEditingExpiresAt.Sub(wantExpiry); d < -time.Second || d > time.Second {
		t.Fatalf("editing expiry = %v, want ~%v", got.DataEditingExpiresAt, wantExpiry)
	}

	won, err = MarkOnboardingCompleted(ctx, db, u.ID, time.Now().UTC(), time.Hour)
	if err != nil {
		t.Fatalf("second MarkOnboardingCompleted: %v", err)
	}
	if won {
		t.Fatalf("second transition must lose")
	}
}

func TestMarkOnboardingCompleted_Concurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "race@example.com", "Race")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	const racers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := MarkOnboardingCompleted(ctx, db, u.ID, time.Now().UTC(), time.Hour)
			if err != nil {
				t.Errorf("MarkOnboardingCompleted: %v", err)
				return
			}
			if won {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestMarkDataSubmitted_Preconditions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "submit@example.com", "Submit")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Onboarding not completed yet: the flip must not apply.
	won, err := MarkDataSubmitted(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("MarkDataSubmitted: %v", err)
	}
	if won {
		t.Fatalf("flip must not apply before onboarding completes")
	}

	if _, err := MarkOnboardingCompleted(ctx, db, u.ID, time.Now().UTC(), time.Hour); err != nil {
		t.Fatalf("MarkOnboardingCompleted: %v", err)
	}

	won, err = MarkDataSubmitted(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("MarkDataSubmitted: %v", err)
	}
	if !won {
		t.Fatalf("flip must apply once onboarding is complete and status is draft")
	}

	got, err := GetUser(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.DataStatus != domain.DataStatusSubmitted {
		t.Fatalf("DataStatus = %q, want submitted", got.DataStatus)
	}

	// Already submitted: flipping again loses.
	won, err = MarkDataSubmitted(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("MarkDataSubmitted: %v", err)
	}
	if won {
		t.Fatalf("flip must be one-way")
	}
}
