package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/roadmap-backend/internal/domain"
)

//go:embed achievements.yaml
var defaultCatalog []byte

type file struct {
	Achievements []entry `yaml:"achievements"`
}

type entry struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Category      string `yaml:"category"`
	CriteriaType  string `yaml:"criteria_type"`
	CriteriaValue int    `yaml:"criteria_value"`
	RewardXP      int    `yaml:"reward_xp"`
	SortOrder     int    `yaml:"sort_order"`
	Inactive      bool   `yaml:"inactive"`
}

// Default returns the built-in catalog.
func Default() ([]*types.Achievement, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a YAML catalog.
func Parse(raw []byte) ([]*types.Achievement, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode achievement catalog: %w", err)
	}
	seen := make(map[string]bool, len(f.Achievements))
	out := make([]*types.Achievement, 0, len(f.Achievements))
	for i, e := range f.Achievements {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("achievement #%d: missing id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("achievement %q: duplicate id", id)
		}
		seen[id] = true
		ct := types.CriteriaType(strings.TrimSpace(e.CriteriaType))
		if !ct.Valid() {
			return nil, fmt.Errorf("achievement %q: unknown criteria_type %q", id, e.CriteriaType)
		}
		if e.CriteriaValue <= 0 {
			return nil, fmt.Errorf("achievement %q: criteria_value must be positive", id)
		}
		if e.RewardXP < 0 {
			return nil, fmt.Errorf("achievement %q: reward_xp must not be negative", id)
		}
		out = append(out, &types.Achievement{
			ID:            id,
			Title:         e.Title,
			Description:   e.Description,
			Category:      e.Category,
			CriteriaType:  ct,
			CriteriaValue: e.CriteriaValue,
			RewardXP:      e.RewardXP,
			SortOrder:     e.SortOrder,
			IsActive:      !e.Inactive,
		})
	}
	return out, nil
}
