package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/park285/codepanel-gamification-go/internal/common/ptr"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
)

func TestApplyScore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	occurred := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC) // 수요일
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)  // 월요일

	t.Run("FirstApply", func(t *testing.T) {
		applied, err := repo.ApplyScore(ctx, ApplyScoreParams{
			UserID:     "u1",
			EventType:  model.EventSubmissionAccepted,
			RefType:    ptr.String("SUBMISSION"),
			RefID:      ptr.String("sub-1"),
			Points:     20,
			OccurredAt: occurred,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !applied {
			t.Fatal("expected first apply to succeed")
		}

		points, err := repo.WeeklyPoints(ctx, "u1", occurred)
		if err != nil {
			t.Fatal(err)
		}
		if points != 20 {
			t.Errorf("weekly points = %d, want 20", points)
		}
	})

	t.Run("DuplicateRefIgnored", func(t *testing.T) {
		applied, err := repo.ApplyScore(ctx, ApplyScoreParams{
			UserID:     "u1",
			EventType:  model.EventSubmissionAccepted,
			RefID:      ptr.String("sub-1"),
			Points:     20,
			OccurredAt: occurred,
		})
		if err != nil {
			t.Fatal(err)
		}
		if applied {
			t.Fatal("expected duplicate (user, eventType, refId) to be ignored")
		}

		points, err := repo.WeeklyPoints(ctx, "u1", occurred)
		if err != nil {
			t.Fatal(err)
		}
		if points != 20 {
			t.Errorf("weekly points after replay = %d, want 20", points)
		}
	})

	t.Run("SameRefDifferentEventType", func(t *testing.T) {
		applied, err := repo.ApplyScore(ctx, ApplyScoreParams{
			UserID:     "u1",
			EventType:  model.EventReviewApproved,
			RefID:      ptr.String("sub-1"),
			Points:     5,
			OccurredAt: occurred,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !applied {
			t.Fatal("different event type with same ref must apply")
		}
	})

	t.Run("NoRefAlwaysApplies", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			applied, err := repo.ApplyScore(ctx, ApplyScoreParams{
				UserID:     "u1",
				EventType:  model.EventCommentLiked,
				Points:     2,
				OccurredAt: occurred,
			})
			if err != nil {
				t.Fatal(err)
			}
			if !applied {
				t.Fatalf("apply %d without refId must succeed", i)
			}
		}

		points, err := repo.WeeklyPoints(ctx, "u1", occurred)
		if err != nil {
			t.Fatal(err)
		}
		if points != 20+5+2+2 {
			t.Errorf("weekly points = %d, want 29", points)
		}
	})

	t.Run("ZeroPointsCreatesWeeklyRow", func(t *testing.T) {
		applied, err := repo.ApplyScore(ctx, ApplyScoreParams{
			UserID:     "u2",
			EventType:  model.EventProblemPosted,
			RefID:      ptr.String("prob-1"),
			Points:     0,
			OccurredAt: occurred,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !applied {
			t.Fatal("zero point event must still be recorded")
		}

		has, err := repo.HasScoreEvent(ctx, "u2", model.EventProblemPosted, "prob-1")
		if err != nil {
			t.Fatal(err)
		}
		if !has {
			t.Error("expected ledger row for zero point event")
		}

		// 0점 활동만 있어도 주간 집계 행이 생겨 주간 보드에 나타난다
		var score UserScore
		err = repo.DB().Where("id = ?", CompositeUserScoreID("u2", weekStart)).First(&score).Error
		if err != nil {
			t.Fatalf("expected weekly row for zero point event: %v", err)
		}
		if score.Points != 0 {
			t.Errorf("weekly points = %d, want 0", score.Points)
		}
	})

	t.Run("NegativePoints", func(t *testing.T) {
		applied, err := repo.ApplyScore(ctx, ApplyScoreParams{
			UserID:     "u3",
			EventType:  model.EventCommentLiked,
			RefID:      ptr.String("c-1"),
			Points:     2,
			OccurredAt: occurred,
		})
		if err != nil || !applied {
			t.Fatalf("applied=%v err=%v", applied, err)
		}
		applied, err = repo.ApplyScore(ctx, ApplyScoreParams{
			UserID:     "u3",
			EventType:  model.EventCommentDisliked,
			RefID:      ptr.String("c-1"),
			Points:     -2,
			OccurredAt: occurred,
		})
		if err != nil || !applied {
			t.Fatalf("applied=%v err=%v", applied, err)
		}

		points, err := repo.WeeklyPoints(ctx, "u3", occurred)
		if err != nil {
			t.Fatal(err)
		}
		if points != 0 {
			t.Errorf("weekly points = %d, want 0", points)
		}
	})

	t.Run("WeekBoundary", func(t *testing.T) {
		sunday := weekStart.AddDate(0, 0, 6).Add(23 * time.Hour)
		nextMonday := weekStart.AddDate(0, 0, 7)

		if _, err := repo.ApplyScore(ctx, ApplyScoreParams{
			UserID: "u4", EventType: model.EventCommentCreated, Points: 1, OccurredAt: sunday,
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.ApplyScore(ctx, ApplyScoreParams{
			UserID: "u4", EventType: model.EventCommentCreated, Points: 1, OccurredAt: nextMonday,
		}); err != nil {
			t.Fatal(err)
		}

		thisWeek, err := repo.WeeklyPoints(ctx, "u4", sunday)
		if err != nil {
			t.Fatal(err)
		}
		nextWeek, err := repo.WeeklyPoints(ctx, "u4", nextMonday)
		if err != nil {
			t.Fatal(err)
		}
		if thisWeek != 1 || nextWeek != 1 {
			t.Errorf("weekly split = (%d, %d), want (1, 1)", thisWeek, nextWeek)
		}
	})
}

func TestScoreEventIdempotencySchema(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	occurred := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	applied, err := repo.ApplyScore(ctx, ApplyScoreParams{
		UserID:     "u1",
		EventType:  model.EventSubmissionAccepted,
		RefID:      ptr.String("sub-1"),
		Points:     20,
		OccurredAt: occurred,
	})
	if err != nil || !applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}

	// 동일 (user_id, event_type, ref_id) 튜플은 스키마 수준에서 거부된다
	dup := ScoreEvent{
		UserID:    "u1",
		EventType: string(model.EventSubmissionAccepted),
		RefID:     ptr.String("sub-1"),
		Points:    20,
		CreatedAt: occurred,
	}
	if err := repo.DB().Create(&dup).Error; err == nil {
		t.Fatal("schema must reject duplicate idempotency tuple")
	}

	// ref_id가 NULL인 행끼리는 충돌하지 않는다
	for i := 0; i < 2; i++ {
		row := ScoreEvent{
			UserID:    "u1",
			EventType: string(model.EventCommentLiked),
			Points:    2,
			CreatedAt: occurred,
		}
		if err := repo.DB().Create(&row).Error; err != nil {
			t.Fatalf("null ref_id insert %d failed: %v", i, err)
		}
	}
}

func TestApplyScoreConcurrentDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	occurred := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	params := ApplyScoreParams{
		UserID:     "u1",
		EventType:  model.EventSubmissionAccepted,
		RefID:      ptr.String("sub-1"),
		Points:     20,
		OccurredAt: occurred,
	}

	results := make(chan bool, 2)
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := repo.ApplyScore(context.Background(), params)
			results <- applied
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
	appliedCount := 0
	for applied := range results {
		if applied {
			appliedCount++
		}
	}
	if appliedCount != 1 {
		t.Errorf("applied count = %d, want exactly 1", appliedCount)
	}

	points, err := repo.WeeklyPoints(context.Background(), "u1", occurred)
	if err != nil {
		t.Fatal(err)
	}
	if points != 20 {
		t.Errorf("weekly points = %d, want 20", points)
	}
}

func TestWeeklyPointsMissingRow(t *testing.T) {
	repo := newTestRepo(t)

	points, err := repo.WeeklyPoints(context.Background(), "ghost", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if points != 0 {
		t.Errorf("points = %d, want 0", points)
	}
}
