package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

//go:embed achievements.yaml
var achievementsYAML []byte

type catalogFile struct {
	Achievements []catalogEntry `yaml:"achievements"`
}

type catalogEntry struct {
	ID          string `yaml:"id"`
	Icon        string `yaml:"icon"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Metric      string `yaml:"metric"`
	Target      int64  `yaml:"target"`
	Reward      int    `yaml:"reward"`
}

// LoadAchievementCatalog: 내장 YAML 카탈로그를 파싱하고 검증한다.
func LoadAchievementCatalog() ([]Achievement, error) {
	var file catalogFile
	if err := yaml.Unmarshal(achievementsYAML, &file); err != nil {
		return nil, fmt.Errorf("parse achievement catalog: %w", err)
	}
	if len(file.Achievements) == 0 {
		return nil, fmt.Errorf("achievement catalog is empty")
	}

	seen := make(map[string]struct{}, len(file.Achievements))
	defs := make([]Achievement, 0, len(file.Achievements))
	for _, entry := range file.Achievements {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("achievement %q has no id", entry.Name)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate achievement id: %q", id)
		}
		seen[id] = struct{}{}

		metric, err := model.ParseMetricType(entry.Metric)
		if err != nil {
			return nil, fmt.Errorf("achievement %q: %w", id, err)
		}
		category := model.AchievementCategory(strings.ToUpper(strings.TrimSpace(entry.Category)))
		if category != model.CategoryMilestone && category != model.CategoryStreak {
			return nil, fmt.Errorf("achievement %q: unknown category %q", id, entry.Category)
		}
		if entry.Target <= 0 {
			return nil, fmt.Errorf("achievement %q: target must be positive", id)
		}

		defs = append(defs, Achievement{
			ID:           id,
			Name:         strings.TrimSpace(entry.Name),
			Description:  strings.TrimSpace(entry.Description),
			Icon:         strings.TrimSpace(entry.Icon),
			Category:     string(category),
			Metric:       string(metric),
			TargetValue:  entry.Target,
			PointsReward: entry.Reward,
		})
	}
	return defs, nil
}

// SeedAchievements: 업적 정의가 비어 있으면 내장 카탈로그를 시드한다.
// 이미 정의가 존재하면 아무 것도 하지 않고 (0, nil)을 반환한다.
func (r *Repository) SeedAchievements(ctx context.Context) (int, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}

	count, err := r.CountAchievements(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	defs, err := LoadAchievementCatalog()
	if err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Create(&defs).Error; err != nil {
		return 0, cerrors.DatabaseError{Operation: "seed_achievements", Err: err}
	}
	return len(defs), nil
}
