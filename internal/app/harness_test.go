package app

import (
	"context"
	"testing"
	"time"

	"jobportal/internal/common"
	"jobportal/internal/domain/recruiter"
	"jobportal/internal/domain/subscription"
	"jobportal/internal/domain/user"
	"jobportal/internal/metrics"
)

type testEnv struct {
	now           time.Time
	users         *fakeUserRepo
	recruiters    *fakeRecruiterRepo
	jobs          *fakeJobRepo
	apps          *fakeApplicationRepo
	plans         *fakePlanRepo
	subs          *fakeSubscriptionRepo
	notifications *fakeNotificationRepo
	metrics       *metrics.Collector

	notifier     *NotificationService
	subscription *SubscriptionService
	jobService   *JobService
	applications *ApplicationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		now:           time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		users:         newFakeUserRepo(),
		recruiters:    newFakeRecruiterRepo(),
		jobs:          newFakeJobRepo(),
		apps:          newFakeApplicationRepo(),
		plans:         newFakePlanRepo(),
		subs:          newFakeSubscriptionRepo(),
		notifications: &fakeNotificationRepo{},
		metrics:       metrics.NewCollector(),
	}
	clock := func() time.Time { return env.now }
	logger := testLogger()
	env.notifier = NewNotificationService(env.notifications, logger)
	env.subscription = NewSubscriptionService(env.plans, env.subs, env.jobs, env.recruiters, env.notifier, logger)
	env.subscription.clock = clock
	env.jobService = NewJobService(env.jobs, env.recruiters, env.subscription, env.notifier, logger)
	env.jobService.clock = clock
	env.applications = NewApplicationService(env.apps, env.jobs, env.users, env.subscription, env.notifier, env.metrics, logger)
	env.applications.clock = clock
	return env
}

func (e *testEnv) addUser(t *testing.T, role user.Role, email string) *user.User {
	t.Helper()
	created, err := e.users.Create(context.Background(), user.User{Email: email, Name: "User " + email, Role: role})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return created
}

func (e *testEnv) addPlan(t *testing.T, code string, features subscription.Features) *subscription.Plan {
	t.Helper()
	if features.JobValidityDays == 0 {
		features.JobValidityDays = 30
	}
	plan, err := e.plans.Create(context.Background(), subscription.Plan{
		Code:         code,
		Name:         code,
		DurationDays: 30,
		Features:     features,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return plan
}

// addRecruiter creates a recruiter with a profile subscribed to the plan.
func (e *testEnv) addRecruiter(t *testing.T, email string, plan *subscription.Plan) common.UUID {
	t.Helper()
	account := e.addUser(t, user.RoleRecruiter, email)
	if _, err := e.recruiters.Upsert(context.Background(), recruiter.Recruiter{UserID: account.ID, CompanyName: "Acme"}); err != nil {
		t.Fatalf("create recruiter: %v", err)
	}
	if plan != nil {
		if _, err := e.subscription.Subscribe(context.Background(), account.ID, plan.ID); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}
	return account.ID
}

func requireCode(t *testing.T, err error, code common.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !common.Is(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
