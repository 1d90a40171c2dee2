package app

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"jobportal/internal/common"
	"jobportal/internal/domain/application"
	"jobportal/internal/domain/cms"
	"jobportal/internal/domain/job"
	"jobportal/internal/domain/notification"
	"jobportal/internal/domain/recruiter"
	"jobportal/internal/domain/subscription"
	"jobportal/internal/domain/user"
)

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func intRef(v int) *int {
	return &v
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[common.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[common.UUID]user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, common.NewError(common.CodeConflict, "email already registered", nil)
		}
	}
	if u.ID.IsZero() {
		u.ID = common.NewUUID()
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = u
	return &u, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "user not found", nil)
}

type fakeRecruiterRepo struct {
	mu    sync.Mutex
	items map[common.UUID]recruiter.Recruiter
}

func newFakeRecruiterRepo() *fakeRecruiterRepo {
	return &fakeRecruiterRepo{items: make(map[common.UUID]recruiter.Recruiter)}
}

func (r *fakeRecruiterRepo) Upsert(ctx context.Context, rec recruiter.Recruiter) (*recruiter.Recruiter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.items[rec.UserID]; ok {
		rec.Status = existing.Status
		rec.Verified = existing.Verified
		rec.CreatedAt = existing.CreatedAt
	} else {
		if rec.Status == "" {
			rec.Status = recruiter.StatusActive
		}
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	r.items[rec.UserID] = rec
	return &rec, nil
}

func (r *fakeRecruiterRepo) GetByUserID(ctx context.Context, userID common.UUID) (*recruiter.Recruiter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[userID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "recruiter not found", nil)
	}
	return &rec, nil
}

func (r *fakeRecruiterRepo) List(ctx context.Context, filter recruiter.Filter) ([]recruiter.Recruiter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recruiter.Recruiter
	for _, rec := range r.items {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.Verified != nil && rec.Verified != *filter.Verified {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeRecruiterRepo) SetStatus(ctx context.Context, userID common.UUID, status recruiter.Status) (*recruiter.Recruiter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[userID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "recruiter not found", nil)
	}
	rec.Status = status
	r.items[userID] = rec
	return &rec, nil
}

func (r *fakeRecruiterRepo) SetVerified(ctx context.Context, userID common.UUID, verified bool) (*recruiter.Recruiter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[userID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "recruiter not found", nil)
	}
	rec.Verified = verified
	r.items[userID] = rec
	return &rec, nil
}

type fakeJobRepo struct {
	mu            sync.Mutex
	jobs          map[common.UUID]job.Job
	statusUpdates []job.Status
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[common.UUID]job.Job)}
}

func (r *fakeJobRepo) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.ID = common.NewUUID()
	j.CreatedAt = time.Now().UTC()
	j.UpdatedAt = j.CreatedAt
	r.jobs[j.ID] = j
	return &j, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, j job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.jobs[j.ID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	j.CurrentApplicationCount = current.CurrentApplicationCount
	j.Status = current.Status
	j.ApplicationLimitReached = current.ApplicationLimitReached
	j.AutoClosedAt = current.AutoClosedAt
	j.CloseAtLimit(time.Now())
	r.jobs[j.ID] = j
	return &j, nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	return &j, nil
}

func (r *fakeJobRepo) List(ctx context.Context, filter job.Filter) ([]job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []job.Job
	for _, j := range r.jobs {
		if filter.RecruiterID != "" && j.RecruiterID != filter.RecruiterID {
			continue
		}
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.ActiveAt != nil && (j.Status != job.StatusActive || !j.ExpiryDate.After(*filter.ActiveAt)) {
			continue
		}
		if filter.Type != "" && j.Type != filter.Type {
			continue
		}
		if filter.Featured != nil && j.Featured != *filter.Featured {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (r *fakeJobRepo) count(recruiterID common.UUID, now time.Time, featuredOnly bool) int {
	count := 0
	for _, j := range r.jobs {
		if j.RecruiterID != recruiterID || j.Status != job.StatusActive || !j.ExpiryDate.After(now) {
			continue
		}
		if featuredOnly && !j.Featured {
			continue
		}
		count++
	}
	return count
}

func (r *fakeJobRepo) CountActiveByRecruiter(ctx context.Context, recruiterID common.UUID, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count(recruiterID, now, false), nil
}

func (r *fakeJobRepo) CountFeaturedByRecruiter(ctx context.Context, recruiterID common.UUID, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count(recruiterID, now, true), nil
}

func (r *fakeJobRepo) UpdateStatus(ctx context.Context, id common.UUID, status job.Status) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	j.Status = status
	r.jobs[id] = j
	r.statusUpdates = append(r.statusUpdates, status)
	return &j, nil
}

func (r *fakeJobRepo) ReserveApplicationSlot(ctx context.Context, id common.UUID, now time.Time) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	if !j.CanReceiveApplications(now) {
		return nil, common.NewError(common.CodeLimitExceeded, "job is not accepting applications", job.ErrApplicationLimitReached)
	}
	if err := j.IncrementApplicationCount(now); err != nil {
		return nil, common.NewError(common.CodeLimitExceeded, "job has reached its application limit", err)
	}
	r.jobs[id] = j
	return &j, nil
}

func (r *fakeJobRepo) ReleaseApplicationSlot(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.CurrentApplicationCount == 0 {
		return common.NewError(common.CodeNotFound, "job not found", nil)
	}
	j.CurrentApplicationCount--
	if j.Status == job.StatusClosed && j.AutoClosedAt != nil {
		j.Status = job.StatusActive
		j.AutoClosedAt = nil
	}
	j.ApplicationLimitReached = false
	r.jobs[id] = j
	return nil
}

func (r *fakeJobRepo) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, j := range r.jobs {
		if j.ExpireIfDue(now) {
			r.jobs[id] = j
			n++
		}
	}
	return n, nil
}

func (r *fakeJobRepo) put(j job.Job) job.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID.IsZero() {
		j.ID = common.NewUUID()
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	r.jobs[j.ID] = j
	return j
}

type fakeApplicationRepo struct {
	mu        sync.Mutex
	apps      map[common.UUID]application.Application
	createErr error
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[common.UUID]application.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, a application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.apps {
		if existing.JobID == a.JobID && existing.ApplicantID == a.ApplicantID {
			return nil, common.NewError(common.CodeConflict, "already applied to this job", nil)
		}
	}
	a.ID = common.NewUUID()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	r.apps[a.ID] = a
	return &a, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return &a, nil
}

func (r *fakeApplicationRepo) FindByJobAndApplicant(ctx context.Context, jobID, applicantID common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			found := a
			return &found, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []application.Application
	for _, a := range r.apps {
		if a.ApplicantID == applicantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListByJob(ctx context.Context, jobID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []application.Application
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id common.UUID, status application.Status, note string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	a.Status = status
	a.RecruiterNote = note
	r.apps[id] = a
	return &a, nil
}

type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[common.UUID]subscription.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[common.UUID]subscription.Plan)}
}

func (r *fakePlanRepo) Create(ctx context.Context, p subscription.Plan) (*subscription.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.plans {
		if existing.Code == p.Code {
			return nil, common.NewError(common.CodeConflict, "plan code already exists", nil)
		}
	}
	p.ID = common.NewUUID()
	r.plans[p.ID] = p
	return &p, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, p subscription.Plan) (*subscription.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[p.ID]; !ok {
		return nil, common.NewError(common.CodeNotFound, "plan not found", nil)
	}
	r.plans[p.ID] = p
	return &p, nil
}

func (r *fakePlanRepo) Upsert(ctx context.Context, p subscription.Plan) (*subscription.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.plans {
		if existing.Code == p.Code {
			p.ID = id
			r.plans[id] = p
			return &p, nil
		}
	}
	p.ID = common.NewUUID()
	r.plans[p.ID] = p
	return &p, nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id common.UUID) (*subscription.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "plan not found", nil)
	}
	return &p, nil
}

func (r *fakePlanRepo) GetByCode(ctx context.Context, code string) (*subscription.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		if p.Code == code {
			found := p
			return &found, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "plan not found", nil)
}

func (r *fakePlanRepo) List(ctx context.Context, activeOnly bool) ([]subscription.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []subscription.Plan
	for _, p := range r.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[common.UUID]subscription.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[common.UUID]subscription.Subscription)}
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, s subscription.Subscription) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.RecruiterID == s.RecruiterID && existing.Status == subscription.StatusActive {
			return nil, common.NewError(common.CodeConflict, "recruiter already has an active subscription", nil)
		}
	}
	s.ID = common.NewUUID()
	r.subs[s.ID] = s
	return &s, nil
}

func (r *fakeSubscriptionRepo) GetByID(ctx context.Context, id common.UUID) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "subscription not found", nil)
	}
	return &s, nil
}

func (r *fakeSubscriptionRepo) GetActiveByRecruiter(ctx context.Context, recruiterID common.UUID) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.RecruiterID == recruiterID && s.Status == subscription.StatusActive {
			found := s
			return &found, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "subscription not found", nil)
}

func (r *fakeSubscriptionRepo) ListByRecruiter(ctx context.Context, recruiterID common.UUID) ([]subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []subscription.Subscription
	for _, s := range r.subs {
		if s.RecruiterID == recruiterID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, s subscription.Subscription) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.subs[s.ID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "subscription not found", nil)
	}
	s.Usage.JobsPosted = current.Usage.JobsPosted
	r.subs[s.ID] = s
	return &s, nil
}

func (r *fakeSubscriptionRepo) Replace(ctx context.Context, current, next subscription.Subscription) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.subs[current.ID]
	if !ok || stored.Status != subscription.StatusActive {
		return nil, common.NewError(common.CodeConflict, "subscription changed concurrently", nil)
	}
	stored.Status = current.Status
	stored.CancelledAt = current.CancelledAt
	r.subs[current.ID] = stored
	next.ID = common.NewUUID()
	r.subs[next.ID] = next
	return &next, nil
}

func (r *fakeSubscriptionRepo) IncrementJobsPosted(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return common.NewError(common.CodeNotFound, "subscription not found", nil)
	}
	s.Usage.JobsPosted++
	r.subs[id] = s
	return nil
}

func (r *fakeSubscriptionRepo) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.subs {
		if s.CheckExpiry(now) {
			r.subs[id] = s
			n++
		}
	}
	return n, nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []notification.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n notification.Notification) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = common.NewUUID()
	n.CreatedAt = time.Now().UTC()
	r.items = append(r.items, n)
	return &n, nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID common.UUID, unreadOnly bool, limit, offset int) ([]notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Notification
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return common.NewError(common.CodeNotFound, "notification not found", nil)
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID common.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID common.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) byType(userID common.UUID, t notification.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && n.Type == t {
			count++
		}
	}
	return count
}

type fakeBannerRepo struct {
	mu      sync.Mutex
	banners map[common.UUID]cms.Banner
	lists   int
}

func newFakeBannerRepo() *fakeBannerRepo {
	return &fakeBannerRepo{banners: make(map[common.UUID]cms.Banner)}
}

func (r *fakeBannerRepo) Create(ctx context.Context, b cms.Banner) (*cms.Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = common.NewUUID()
	r.banners[b.ID] = b
	return &b, nil
}

func (r *fakeBannerRepo) Update(ctx context.Context, b cms.Banner) (*cms.Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.banners[b.ID]; !ok {
		return nil, common.NewError(common.CodeNotFound, "banner not found", nil)
	}
	r.banners[b.ID] = b
	return &b, nil
}

func (r *fakeBannerRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.banners[id]; !ok {
		return common.NewError(common.CodeNotFound, "banner not found", nil)
	}
	delete(r.banners, id)
	return nil
}

func (r *fakeBannerRepo) GetByID(ctx context.Context, id common.UUID) (*cms.Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.banners[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "banner not found", nil)
	}
	return &b, nil
}

func (r *fakeBannerRepo) List(ctx context.Context, filter cms.BannerFilter) ([]cms.Banner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	var out []cms.Banner
	for _, b := range r.banners {
		if filter.Placement != "" && b.Placement != filter.Placement {
			continue
		}
		if filter.ActiveOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Priority > out[k].Priority })
	return out, nil
}

type fakeCardRepo struct {
	mu    sync.Mutex
	cards map[common.UUID]cms.Card
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[common.UUID]cms.Card)}
}

func (r *fakeCardRepo) Create(ctx context.Context, c cms.Card) (*cms.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = common.NewUUID()
	r.cards[c.ID] = c
	return &c, nil
}

func (r *fakeCardRepo) Update(ctx context.Context, c cms.Card) (*cms.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[c.ID]; !ok {
		return nil, common.NewError(common.CodeNotFound, "card not found", nil)
	}
	r.cards[c.ID] = c
	return &c, nil
}

func (r *fakeCardRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cards, id)
	return nil
}

func (r *fakeCardRepo) GetByID(ctx context.Context, id common.UUID) (*cms.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "card not found", nil)
	}
	return &c, nil
}

func (r *fakeCardRepo) List(ctx context.Context, filter cms.CardFilter) ([]cms.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []cms.Card
	for _, c := range r.cards {
		if filter.Section != "" && c.Section != filter.Section {
			continue
		}
		if filter.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].SortOrder < out[k].SortOrder })
	return out, nil
}
