package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

func TestSeedAchievements(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seeded, err := repo.SeedAchievements(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if seeded != 36 {
		t.Errorf("seeded = %d, want 36", seeded)
	}

	// 재기동 시에는 시드하지 않는다
	seeded, err = repo.SeedAchievements(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if seeded != 0 {
		t.Errorf("re-seed = %d, want 0", seeded)
	}

	count, err := repo.CountAchievements(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 36 {
		t.Errorf("count = %d, want 36", count)
	}
}

func TestLoadAchievementCatalog(t *testing.T) {
	defs, err := LoadAchievementCatalog()
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 36 {
		t.Fatalf("catalog size = %d, want 36", len(defs))
	}

	byID := make(map[string]Achievement, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}

	first, ok := byID["first-problem"]
	if !ok {
		t.Fatal("missing first-problem")
	}
	if first.Metric != string(model.MetricProblemsPosted) || first.TargetValue != 1 || first.PointsReward != 10 {
		t.Errorf("first-problem = %+v", first)
	}

	beast, ok := byID["activity-beast"]
	if !ok {
		t.Fatal("missing activity-beast")
	}
	if beast.Category != string(model.CategoryStreak) || beast.TargetValue != 30 || beast.PointsReward != 200 {
		t.Errorf("activity-beast = %+v", beast)
	}
}

func TestListEligibleAchievements(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if _, err := repo.SeedAchievements(ctx); err != nil {
		t.Fatal(err)
	}

	// COMMENTS_POSTED 25: target 1, 25 두 개가 해당
	defs, err := repo.ListEligibleAchievements(ctx, model.MetricCommentsPosted, 25)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 2 {
		t.Fatalf("eligible = %d, want 2", len(defs))
	}
	if defs[0].TargetValue != 1 || defs[1].TargetValue != 25 {
		t.Errorf("targets = [%d, %d], want [1, 25]", defs[0].TargetValue, defs[1].TargetValue)
	}

	defs, err = repo.ListEligibleAchievements(ctx, model.MetricCommentsPosted, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 0 {
		t.Errorf("eligible at 0 = %d, want 0", len(defs))
	}
}

func TestGrantAchievement(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	def := Achievement{
		ID:           "first-problem",
		Name:         "First Problem",
		Category:     string(model.CategoryMilestone),
		Metric:       string(model.MetricProblemsPosted),
		TargetValue:  1,
		PointsReward: 10,
	}
	if err := repo.DB().Create(&def).Error; err != nil {
		t.Fatal(err)
	}

	t.Run("FirstGrant", func(t *testing.T) {
		result, err := repo.GrantAchievement(ctx, "u1", def, now)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Granted {
			t.Fatal("expected grant")
		}

		// 보상 점수가 주간 집계에 반영된다
		points, err := repo.WeeklyPoints(ctx, "u1", now)
		if err != nil {
			t.Fatal(err)
		}
		if points != 10 {
			t.Errorf("weekly points = %d, want 10", points)
		}

		// 감사 이벤트가 원장에 남는다
		var audit []ScoreEvent
		if err := repo.DB().Where("user_id = ? AND event_type = ?", "u1", string(model.EventAchievementAwarded)).Find(&audit).Error; err != nil {
			t.Fatal(err)
		}
		if len(audit) != 1 || audit[0].Points != 10 {
			t.Fatalf("audit events = %+v, want one with points 10", audit)
		}
	})

	t.Run("DuplicateGrantIgnored", func(t *testing.T) {
		result, err := repo.GrantAchievement(ctx, "u1", def, now.Add(time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if result.Granted {
			t.Fatal("duplicate grant must be ignored")
		}

		// 중복 수여 시 보상도 감사 이벤트도 추가되지 않는다
		points, err := repo.WeeklyPoints(ctx, "u1", now)
		if err != nil {
			t.Fatal(err)
		}
		if points != 10 {
			t.Errorf("weekly points after duplicate = %d, want 10", points)
		}
	})

	t.Run("ListUserAchievements", func(t *testing.T) {
		views, err := repo.ListUserAchievements(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(views) != 1 {
			t.Fatalf("views = %d, want 1", len(views))
		}
		if views[0].AchievementID != "first-problem" || views[0].Name != "First Problem" {
			t.Errorf("view = %+v", views[0])
		}
	})

	t.Run("HasUserAchievement", func(t *testing.T) {
		has, err := repo.HasUserAchievement(ctx, "u1", "first-problem")
		if err != nil {
			t.Fatal(err)
		}
		if !has {
			t.Error("expected granted achievement")
		}
		has, err = repo.HasUserAchievement(ctx, "u2", "first-problem")
		if err != nil {
			t.Fatal(err)
		}
		if has {
			t.Error("u2 must not have the achievement")
		}
	})
}

func TestGrantAchievementConcurrent(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	def := Achievement{
		ID:           "first-problem",
		Name:         "First Problem",
		Category:     string(model.CategoryMilestone),
		Metric:       string(model.MetricProblemsPosted),
		TargetValue:  1,
		PointsReward: 10,
	}
	if err := repo.DB().Create(&def).Error; err != nil {
		t.Fatal(err)
	}

	// 두 평가가 동시에 수여를 시도해도 유니크 제약이 한 쪽만 통과시킨다
	results := make(chan GrantResult, 2)
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := repo.GrantAchievement(context.Background(), "u1", def, now)
			results <- result
			errs <- err
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	grantedCount := 0
	for result := range results {
		if result.Granted {
			grantedCount++
		}
	}
	if grantedCount != 1 {
		t.Errorf("granted count = %d, want exactly 1", grantedCount)
	}

	var rows int64
	if err := repo.DB().Model(&UserAchievement{}).Where("user_id = ?", "u1").Count(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("grant rows = %d, want 1", rows)
	}

	// 보상도 한 번만 반영된다
	points, err := repo.WeeklyPoints(context.Background(), "u1", now)
	if err != nil {
		t.Fatal(err)
	}
	if points != 10 {
		t.Errorf("weekly points = %d, want 10", points)
	}
}

func TestGrantAchievementZeroReward(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	def := Achievement{
		ID:          "no-reward",
		Name:        "No Reward",
		Category:    string(model.CategoryMilestone),
		Metric:      string(model.MetricCommentsPosted),
		TargetValue: 1,
	}
	if err := repo.DB().Create(&def).Error; err != nil {
		t.Fatal(err)
	}

	result, err := repo.GrantAchievement(ctx, "u1", def, now)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Granted {
		t.Fatal("expected grant")
	}

	points, err := repo.WeeklyPoints(ctx, "u1", now)
	if err != nil {
		t.Fatal(err)
	}
	if points != 0 {
		t.Errorf("weekly points = %d, want 0", points)
	}
}
