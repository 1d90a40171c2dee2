package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobportal/internal/common"
	"jobportal/internal/domain/cms"
)

type BannerRepository struct {
	db *sql.DB
}

func NewBannerRepository(db *sql.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

const bannerColumns = `id, title, subtitle, image_url, link_url, placement, priority, is_active, target_audience, schedule, created_at, updated_at`

func (r *BannerRepository) Create(ctx context.Context, b cms.Banner) (*cms.Banner, error) {
	b.ID = common.NewUUID()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	audience, schedule, err := encodeTargeting(b.TargetAudience, b.Schedule)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO cms_banners (`+bannerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.Placement, b.Priority, b.IsActive, audience, schedule, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create banner", err)
	}
	return &b, nil
}

func (r *BannerRepository) Update(ctx context.Context, b cms.Banner) (*cms.Banner, error) {
	audience, schedule, err := encodeTargeting(b.TargetAudience, b.Schedule)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `UPDATE cms_banners SET title = $1, subtitle = $2, image_url = $3, link_url = $4, placement = $5,
		priority = $6, is_active = $7, target_audience = $8, schedule = $9, updated_at = $10 WHERE id = $11 RETURNING `+bannerColumns,
		b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.Placement, b.Priority, b.IsActive, audience, schedule, time.Now().UTC(), b.ID)
	return scanBanner(row)
}

func (r *BannerRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cms_banners WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete banner", err)
	}
	return requireRows(result, "banner not found")
}

func (r *BannerRepository) GetByID(ctx context.Context, id common.UUID) (*cms.Banner, error) {
	return scanBanner(r.db.QueryRowContext(ctx, `SELECT `+bannerColumns+` FROM cms_banners WHERE id = $1`, id))
}

func (r *BannerRepository) List(ctx context.Context, filter cms.BannerFilter) ([]cms.Banner, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Placement != "" {
		args = append(args, filter.Placement)
		conditions = append(conditions, fmt.Sprintf("placement = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	query := `SELECT ` + bannerColumns + ` FROM cms_banners`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY priority DESC, created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list banners", err)
	}
	defer rows.Close()
	var items []cms.Banner
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list banners", err)
	}
	return items, nil
}

func scanBanner(row scanner) (*cms.Banner, error) {
	var b cms.Banner
	var audience, schedule []byte
	if err := row.Scan(&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &b.LinkURL, &b.Placement, &b.Priority, &b.IsActive,
		&audience, &schedule, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, readError(err, "banner not found", "failed to load banner")
	}
	if err := decodeTargeting(audience, schedule, &b.TargetAudience, &b.Schedule); err != nil {
		return nil, err
	}
	return &b, nil
}

type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, title, description, icon, link_url, section, sort_order, is_active, target_audience, schedule, created_at, updated_at`

func (r *CardRepository) Create(ctx context.Context, c cms.Card) (*cms.Card, error) {
	c.ID = common.NewUUID()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	audience, schedule, err := encodeTargeting(c.TargetAudience, c.Schedule)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO cms_cards (`+cardColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Title, c.Description, c.Icon, c.LinkURL, c.Section, c.SortOrder, c.IsActive, audience, schedule, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create card", err)
	}
	return &c, nil
}

func (r *CardRepository) Update(ctx context.Context, c cms.Card) (*cms.Card, error) {
	audience, schedule, err := encodeTargeting(c.TargetAudience, c.Schedule)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `UPDATE cms_cards SET title = $1, description = $2, icon = $3, link_url = $4, section = $5,
		sort_order = $6, is_active = $7, target_audience = $8, schedule = $9, updated_at = $10 WHERE id = $11 RETURNING `+cardColumns,
		c.Title, c.Description, c.Icon, c.LinkURL, c.Section, c.SortOrder, c.IsActive, audience, schedule, time.Now().UTC(), c.ID)
	return scanCard(row)
}

func (r *CardRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cms_cards WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete card", err)
	}
	return requireRows(result, "card not found")
}

func (r *CardRepository) GetByID(ctx context.Context, id common.UUID) (*cms.Card, error) {
	return scanCard(r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cms_cards WHERE id = $1`, id))
}

func (r *CardRepository) List(ctx context.Context, filter cms.CardFilter) ([]cms.Card, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Section != "" {
		args = append(args, filter.Section)
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	query := `SELECT ` + cardColumns + ` FROM cms_cards`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sort_order ASC, created_at ASC"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list cards", err)
	}
	defer rows.Close()
	var items []cms.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list cards", err)
	}
	return items, nil
}

func scanCard(row scanner) (*cms.Card, error) {
	var c cms.Card
	var audience, schedule []byte
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Icon, &c.LinkURL, &c.Section, &c.SortOrder, &c.IsActive,
		&audience, &schedule, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, readError(err, "card not found", "failed to load card")
	}
	if err := decodeTargeting(audience, schedule, &c.TargetAudience, &c.Schedule); err != nil {
		return nil, err
	}
	return &c, nil
}

// Targeting is stored as jsonb; values are sent as text so both drivers accept them.
func encodeTargeting(audience cms.Audience, schedule cms.Schedule) (string, string, error) {
	audienceJSON, err := json.Marshal(audience)
	if err != nil {
		return "", "", common.NewError(common.CodeInternal, "failed to encode target audience", err)
	}
	scheduleJSON, err := json.Marshal(schedule)
	if err != nil {
		return "", "", common.NewError(common.CodeInternal, "failed to encode schedule", err)
	}
	return string(audienceJSON), string(scheduleJSON), nil
}

func decodeTargeting(audienceRaw, scheduleRaw []byte, audience *cms.Audience, schedule *cms.Schedule) error {
	if len(audienceRaw) > 0 {
		if err := json.Unmarshal(audienceRaw, audience); err != nil {
			return common.NewError(common.CodeInternal, "failed to decode target audience", err)
		}
	}
	if len(scheduleRaw) > 0 {
		if err := json.Unmarshal(scheduleRaw, schedule); err != nil {
			return common.NewError(common.CodeInternal, "failed to decode schedule", err)
		}
	}
	return nil
}
