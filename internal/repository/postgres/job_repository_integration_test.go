package postgres

import (
	"context"
	"database/sql"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"jobportal/internal/common"
	"jobportal/internal/database"
	"jobportal/internal/domain/job"
	"jobportal/internal/domain/recruiter"
	"jobportal/internal/domain/user"
)

// openTestDB connects to TEST_DATABASE_URL and applies the embedded
// migrations; the test is skipped when the variable is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedRecruiter inserts a recruiter account and removes it, with its jobs,
// when the test ends.
func seedRecruiter(t *testing.T, db *sql.DB) common.UUID {
	t.Helper()
	ctx := context.Background()
	account, err := NewUserRepository(db).Create(ctx, user.User{
		Email:        "recruiter-" + common.NewUUID().String() + "@example.com",
		Name:         "Recruiter",
		PasswordHash: "x",
		Role:         user.RoleRecruiter,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		if _, err := db.ExecContext(context.Background(), `DELETE FROM users WHERE id = $1`, account.ID); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	})
	if _, err := NewRecruiterRepository(db).Upsert(ctx, recruiter.Recruiter{UserID: account.ID, CompanyName: "Acme"}); err != nil {
		t.Fatalf("create recruiter: %v", err)
	}
	return account.ID
}

func seedJob(t *testing.T, repo *JobRepository, recruiterID common.UUID, maxApplications *int) *job.Job {
	t.Helper()
	created, err := repo.Create(context.Background(), job.Job{
		RecruiterID:     recruiterID,
		CompanyName:     "Acme",
		Title:           "Backend Engineer",
		Description:     "Build APIs",
		Type:            job.TypeFullTime,
		Status:          job.StatusActive,
		ExpiryDate:      time.Now().UTC().Add(24 * time.Hour),
		MaxApplications: maxApplications,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return created
}

func TestReserveApplicationSlotUnderConcurrency(t *testing.T) {
	db := openTestDB(t)
	repo := NewJobRepository(db)
	limit := 5
	posted := seedJob(t, repo, seedRecruiter(t, db), &limit)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		reserved atomic.Int32
		rejected atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ReserveApplicationSlot(ctx, posted.ID, time.Now())
			switch {
			case err == nil:
				reserved.Add(1)
			case common.Is(err, common.CodeLimitExceeded):
				rejected.Add(1)
			default:
				t.Errorf("reserve: %v", err)
			}
		}()
	}
	wg.Wait()

	if reserved.Load() != int32(limit) || rejected.Load() != int32(20-limit) {
		t.Fatalf("expected %d reservations, got %d (rejected %d)", limit, reserved.Load(), rejected.Load())
	}
	stored, err := repo.GetByID(ctx, posted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.CurrentApplicationCount != limit || stored.Status != job.StatusClosed || !stored.ApplicationLimitReached || stored.AutoClosedAt == nil {
		t.Fatalf("expected job auto-closed at its limit, got %+v", stored)
	}

	if err := repo.ReleaseApplicationSlot(ctx, posted.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	stored, err = repo.GetByID(ctx, posted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.CurrentApplicationCount != limit-1 || stored.Status != job.StatusActive || stored.ApplicationLimitReached || stored.AutoClosedAt != nil {
		t.Fatalf("expected released job reopened, got %+v", stored)
	}
	if _, err := repo.ReserveApplicationSlot(ctx, posted.ID, time.Now()); err != nil {
		t.Fatalf("reserve freed slot: %v", err)
	}
}

func TestReleaseKeepsManuallyClosedJobClosed(t *testing.T) {
	db := openTestDB(t)
	repo := NewJobRepository(db)
	posted := seedJob(t, repo, seedRecruiter(t, db), nil)
	ctx := context.Background()

	if _, err := repo.ReserveApplicationSlot(ctx, posted.ID, time.Now()); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, posted.ID, job.StatusClosed); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := repo.ReleaseApplicationSlot(ctx, posted.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	stored, err := repo.GetByID(ctx, posted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != job.StatusClosed || stored.CurrentApplicationCount != 0 {
		t.Fatalf("expected manual close kept, got %+v", stored)
	}
	err = repo.ReleaseApplicationSlot(ctx, posted.ID)
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not_found releasing an empty counter, got %v", err)
	}
}

func TestUpdateClosesJobAtLoweredLimit(t *testing.T) {
	db := openTestDB(t)
	repo := NewJobRepository(db)
	posted := seedJob(t, repo, seedRecruiter(t, db), nil)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := repo.ReserveApplicationSlot(ctx, posted.ID, time.Now()); err != nil {
			t.Fatalf("reserve: %v", err)
		}
	}

	limit := 2
	edit := *posted
	edit.MaxApplications = &limit
	updated, err := repo.Update(ctx, edit)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != job.StatusClosed || !updated.ApplicationLimitReached || updated.AutoClosedAt == nil {
		t.Fatalf("expected job closed at its new limit, got %+v", updated)
	}
	_, err = repo.ReserveApplicationSlot(ctx, posted.ID, time.Now())
	if !common.Is(err, common.CodeLimitExceeded) {
		t.Fatalf("expected limit_exceeded, got %v", err)
	}
}
