package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"jobportal/internal/domain/subscription"
)

type planCatalog struct {
	Plans []planEntry `yaml:"plans"`
}

type planEntry struct {
	Code         string                `yaml:"code"`
	Name         string                `yaml:"name"`
	Description  string                `yaml:"description"`
	Price        float64               `yaml:"price"`
	Currency     string                `yaml:"currency"`
	DurationDays int                   `yaml:"duration_days"`
	Active       *bool                 `yaml:"active"`
	Features     subscription.Features `yaml:"features"`
}

// LoadPlans reads the plan catalog used to seed subscription plans. A missing
// file yields no plans.
func LoadPlans(path string) ([]subscription.Plan, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plans file: %w", err)
	}
	return ParsePlans(raw)
}

func ParsePlans(raw []byte) ([]subscription.Plan, error) {
	var catalog planCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	seen := make(map[string]struct{}, len(catalog.Plans))
	plans := make([]subscription.Plan, 0, len(catalog.Plans))
	for i, entry := range catalog.Plans {
		code := strings.TrimSpace(entry.Code)
		if code == "" {
			return nil, fmt.Errorf("plan %d: code is required", i)
		}
		if _, ok := seen[code]; ok {
			return nil, fmt.Errorf("plan %q: duplicate code", code)
		}
		seen[code] = struct{}{}
		if entry.DurationDays <= 0 {
			return nil, fmt.Errorf("plan %q: duration_days must be positive", code)
		}
		if entry.Features.JobValidityDays <= 0 {
			return nil, fmt.Errorf("plan %q: features.job_validity_days must be positive", code)
		}
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		currency := entry.Currency
		if currency == "" {
			currency = "USD"
		}
		plans = append(plans, subscription.Plan{
			Code:         code,
			Name:         entry.Name,
			Description:  entry.Description,
			Price:        entry.Price,
			Currency:     currency,
			DurationDays: entry.DurationDays,
			Features:     entry.Features,
			IsActive:     active,
		})
	}
	return plans, nil
}
