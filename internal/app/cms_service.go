package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"jobportal/internal/cache"
	"jobportal/internal/common"
	"jobportal/internal/domain/cms"
)

type CMSService struct {
	banners  cms.BannerRepository
	cards    cms.CardRepository
	cache    cache.Cache
	cacheTTL time.Duration
	location *time.Location
	logger   logrus.FieldLogger
	clock    func() time.Time
}

func NewCMSService(banners cms.BannerRepository, cards cms.CardRepository, store cache.Cache, cacheTTL time.Duration, location *time.Location, logger logrus.FieldLogger) *CMSService {
	if store == nil {
		store = cache.Noop{}
	}
	if location == nil {
		location = time.UTC
	}
	return &CMSService{
		banners:  banners,
		cards:    cards,
		cache:    store,
		cacheTTL: cacheTTL,
		location: location,
		logger:   logger,
		clock:    time.Now,
	}
}

type BannerInput struct {
	Title          string
	Subtitle       string
	ImageURL       string
	LinkURL        string
	Placement      string
	Priority       int
	IsActive       bool
	TargetAudience cms.Audience
	Schedule       cms.Schedule
}

type CardInput struct {
	Title          string
	Description    string
	Icon           string
	LinkURL        string
	Section        string
	SortOrder      int
	IsActive       bool
	TargetAudience cms.Audience
	Schedule       cms.Schedule
}

// VisibleBanners returns the active banners of a placement that the viewer
// may see right now, highest priority first.
func (s *CMSService) VisibleBanners(ctx context.Context, viewer cms.Viewer, placement string) ([]cms.Banner, error) {
	placement = trimmed(placement)
	var candidates []cms.Banner
	key := bannerCacheKey(placement)
	if !s.cached(ctx, key, &candidates) {
		items, err := s.banners.List(ctx, cms.BannerFilter{Placement: placement, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		candidates = items
		s.store(ctx, key, candidates)
	}
	now := s.clock().In(s.location)
	visible := make([]cms.Banner, 0, len(candidates))
	for _, banner := range candidates {
		if banner.VisibleTo(viewer, now) {
			visible = append(visible, banner)
		}
	}
	return visible, nil
}

func (s *CMSService) VisibleCards(ctx context.Context, viewer cms.Viewer, section string) ([]cms.Card, error) {
	section = trimmed(section)
	var candidates []cms.Card
	key := cardCacheKey(section)
	if !s.cached(ctx, key, &candidates) {
		items, err := s.cards.List(ctx, cms.CardFilter{Section: section, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		candidates = items
		s.store(ctx, key, candidates)
	}
	now := s.clock().In(s.location)
	visible := make([]cms.Card, 0, len(candidates))
	for _, card := range candidates {
		if card.VisibleTo(viewer, now) {
			visible = append(visible, card)
		}
	}
	return visible, nil
}

func (s *CMSService) ListBanners(ctx context.Context, filter cms.BannerFilter) ([]cms.Banner, error) {
	return s.banners.List(ctx, filter)
}

func (s *CMSService) CreateBanner(ctx context.Context, in BannerInput) (*cms.Banner, error) {
	if err := validateContent(in.Title, in.Placement, "placement", in.Schedule); err != nil {
		return nil, err
	}
	created, err := s.banners.Create(ctx, bannerFromInput(in))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, bannerCacheKey(created.Placement), bannerCacheKey(""))
	return created, nil
}

func (s *CMSService) UpdateBanner(ctx context.Context, id common.UUID, in BannerInput) (*cms.Banner, error) {
	if err := validateContent(in.Title, in.Placement, "placement", in.Schedule); err != nil {
		return nil, err
	}
	current, err := s.banners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	banner := bannerFromInput(in)
	banner.ID = current.ID
	banner.CreatedAt = current.CreatedAt
	updated, err := s.banners.Update(ctx, banner)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, bannerCacheKey(current.Placement), bannerCacheKey(updated.Placement), bannerCacheKey(""))
	return updated, nil
}

func (s *CMSService) DeleteBanner(ctx context.Context, id common.UUID) error {
	current, err := s.banners.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.banners.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, bannerCacheKey(current.Placement), bannerCacheKey(""))
	return nil
}

func (s *CMSService) ListCards(ctx context.Context, filter cms.CardFilter) ([]cms.Card, error) {
	return s.cards.List(ctx, filter)
}

func (s *CMSService) CreateCard(ctx context.Context, in CardInput) (*cms.Card, error) {
	if err := validateContent(in.Title, in.Section, "section", in.Schedule); err != nil {
		return nil, err
	}
	created, err := s.cards.Create(ctx, cardFromInput(in))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cardCacheKey(created.Section), cardCacheKey(""))
	return created, nil
}

func (s *CMSService) UpdateCard(ctx context.Context, id common.UUID, in CardInput) (*cms.Card, error) {
	if err := validateContent(in.Title, in.Section, "section", in.Schedule); err != nil {
		return nil, err
	}
	current, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	card := cardFromInput(in)
	card.ID = current.ID
	card.CreatedAt = current.CreatedAt
	updated, err := s.cards.Update(ctx, card)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cardCacheKey(current.Section), cardCacheKey(updated.Section), cardCacheKey(""))
	return updated, nil
}

func (s *CMSService) DeleteCard(ctx context.Context, id common.UUID) error {
	current, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cardCacheKey(current.Section), cardCacheKey(""))
	return nil
}

func (s *CMSService) cached(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cms cache read failed")
		return false
	}
	return hit
}

func (s *CMSService) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cms cache write failed")
	}
}

func (s *CMSService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("cms cache invalidation failed")
	}
}

func bannerCacheKey(placement string) string {
	return "cms:banners:" + placement
}

func cardCacheKey(section string) string {
	return "cms:cards:" + section
}

func validateContent(title, group, groupField string, schedule cms.Schedule) error {
	fields := map[string]string{}
	if trimmed(title) == "" {
		fields["title"] = "title is required"
	}
	if trimmed(group) == "" {
		fields[groupField] = groupField + " is required"
	}
	if schedule.StartDate != nil && schedule.EndDate != nil && schedule.EndDate.Before(*schedule.StartDate) {
		fields["schedule.end_date"] = "end_date must not be before start_date"
	}
	for _, day := range schedule.DaysOfWeek {
		if day < 0 || day > 6 {
			fields["schedule.days_of_week"] = "days must be between 0 (Sunday) and 6 (Saturday)"
			break
		}
	}
	if schedule.StartTime != "" {
		if _, err := cms.ParseClock(schedule.StartTime); err != nil {
			fields["schedule.start_time"] = "start_time must be HH:MM"
		}
	}
	if schedule.EndTime != "" {
		if _, err := cms.ParseClock(schedule.EndTime); err != nil {
			fields["schedule.end_time"] = "end_time must be HH:MM"
		}
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid content", fields)
	}
	return nil
}

func bannerFromInput(in BannerInput) cms.Banner {
	return cms.Banner{
		Title:          trimmed(in.Title),
		Subtitle:       trimmed(in.Subtitle),
		ImageURL:       trimmed(in.ImageURL),
		LinkURL:        trimmed(in.LinkURL),
		Placement:      trimmed(in.Placement),
		Priority:       in.Priority,
		IsActive:       in.IsActive,
		TargetAudience: in.TargetAudience,
		Schedule:       in.Schedule,
	}
}

func cardFromInput(in CardInput) cms.Card {
	return cms.Card{
		Title:          trimmed(in.Title),
		Description:    trimmed(in.Description),
		Icon:           trimmed(in.Icon),
		LinkURL:        trimmed(in.LinkURL),
		Section:        trimmed(in.Section),
		SortOrder:      in.SortOrder,
		IsActive:       in.IsActive,
		TargetAudience: in.TargetAudience,
		Schedule:       in.Schedule,
	}
}
