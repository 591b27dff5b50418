package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
	"gorm.io/gorm"

	"github.com/park285/codepanel-gamification-go/internal/common/config"
	"github.com/park285/codepanel-gamification-go/internal/common/health"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
	gmq "github.com/park285/codepanel-gamification-go/internal/gamification/mq"
	gredis "github.com/park285/codepanel-gamification-go/internal/gamification/redis"
	"github.com/park285/codepanel-gamification-go/internal/gamification/repository"
	gsvc "github.com/park285/codepanel-gamification-go/internal/gamification/service"
)

type apiFixture struct {
	mux    *http.ServeMux
	repo   *repository.Repository
	client valkey.Client
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repo := repository.New(db)
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.SeedAchievements(context.Background()); err != nil {
		t.Fatal(err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mr.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("valkey client create failed: %v", err)
	}
	t.Cleanup(client.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := gredis.NewLeaderboardCache(client, logger)
	leaderboards := gsvc.NewLeaderboardService(repo, cache, logger)
	notifier := gmq.NewNotificationPublisher(client, logger, 1000)
	evaluator := gsvc.NewEvaluator(repo, cache, notifier, logger)
	progress := gsvc.NewProgressService(repo, evaluator, logger)
	publisher := gmq.NewEventPublisher(client, logger, config.ValkeyMQConfig{
		StreamKey:    config.DefaultStreamKey,
		StreamMaxLen: 1000,
	})

	health.Init("test")

	mux := http.NewServeMux()
	Register(mux, repo, leaderboards, progress, publisher, logger)

	return &apiFixture{mux: mux, repo: repo, client: client}
}

func (f *apiFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) postJSON(t *testing.T, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response failed: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestHealthRoute(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.get(t, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody[health.Response](t, rec)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestListAchievementsRoute(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.get(t, "/api/achievements")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	defs := decodeBody[[]AchievementResponse](t, rec)
	if len(defs) != 36 {
		t.Errorf("achievements = %d, want 36", len(defs))
	}
}

func TestUserAchievementsRoute(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	userID := uuid.New().String()
	if err := f.repo.EnsureUser(ctx, userID, "alpha"); err != nil {
		t.Fatal(err)
	}

	t.Run("BadUserID", func(t *testing.T) {
		rec := f.get(t, "/api/users/not-a-uuid/achievements")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("EmptyList", func(t *testing.T) {
		rec := f.get(t, "/api/users/"+userID+"/achievements")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		rows := decodeBody[[]repository.UserAchievementView](t, rec)
		if len(rows) != 0 {
			t.Errorf("rows = %+v, want empty", rows)
		}
	})

	t.Run("AfterGrant", func(t *testing.T) {
		defs, err := f.repo.ListEligibleAchievements(ctx, model.MetricCommentsPosted, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(defs) != 1 {
			t.Fatalf("eligible = %d, want 1", len(defs))
		}
		if _, err := f.repo.GrantAchievement(ctx, userID, defs[0], time.Now().UTC()); err != nil {
			t.Fatal(err)
		}

		rec := f.get(t, "/api/users/"+userID+"/achievements")
		rows := decodeBody[[]repository.UserAchievementView](t, rec)
		if len(rows) != 1 || rows[0].AchievementID != defs[0].ID {
			t.Errorf("rows = %+v, want one %s", rows, defs[0].ID)
		}
	})
}

func TestUserProgressRoute(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	userID := uuid.New().String()
	if err := f.repo.EnsureUser(ctx, userID, "alpha"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.repo.IncrementProgress(ctx, userID, model.MetricProblemsPosted, 3); err != nil {
		t.Fatal(err)
	}

	rec := f.get(t, "/api/users/"+userID+"/progress")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	rows := decodeBody[[]ProgressResponse](t, rec)
	if len(rows) != 1 || rows[0].Metric != string(model.MetricProblemsPosted) || rows[0].Value != 3 {
		t.Errorf("rows = %+v, want PROBLEMS_POSTED=3", rows)
	}
}

func TestWeeklyLeaderboardRoute(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	occurred := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	users := map[string]int{"alpha": 30, "beta": 50}
	for name, points := range users {
		userID := uuid.New().String()
		if err := f.repo.EnsureUser(ctx, userID, name); err != nil {
			t.Fatal(err)
		}
		refID := uuid.New().String()
		applied, err := f.repo.ApplyScore(ctx, repository.ApplyScoreParams{
			UserID:     userID,
			EventType:  model.EventSubmissionAccepted,
			RefID:      &refID,
			Points:     points,
			OccurredAt: occurred,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !applied {
			t.Fatalf("score for %s not applied", name)
		}
	}

	t.Run("BadWeekStart", func(t *testing.T) {
		rec := f.get(t, "/api/leaderboard/weekly?weekStart=03-02-2026")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("RankedPage", func(t *testing.T) {
		rec := f.get(t, "/api/leaderboard/weekly?weekStart=2026-03-04&size=10")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		resp := decodeBody[WeeklyLeaderboardResponse](t, rec)
		// 주 중간 날짜는 해당 주 월요일로 정규화된다
		if resp.WeekStart != "2026-03-02" {
			t.Errorf("weekStart = %q, want 2026-03-02", resp.WeekStart)
		}
		if len(resp.Entries) != 2 {
			t.Fatalf("entries = %+v, want 2", resp.Entries)
		}
		if resp.Entries[0].Points != 50 || resp.Entries[0].Rank != 1 {
			t.Errorf("first = %+v, want 50 points rank 1", resp.Entries[0])
		}
		if resp.Entries[1].Points != 30 || resp.Entries[1].Rank != 2 {
			t.Errorf("second = %+v, want 30 points rank 2", resp.Entries[1])
		}
	})

	t.Run("SecondPage", func(t *testing.T) {
		rec := f.get(t, "/api/leaderboard/weekly?weekStart=2026-03-02&page=1&size=1")
		resp := decodeBody[WeeklyLeaderboardResponse](t, rec)
		if len(resp.Entries) != 1 || resp.Entries[0].Rank != 2 || resp.Entries[0].Points != 30 {
			t.Errorf("entries = %+v, want rank 2 with 30", resp.Entries)
		}
	})

	t.Run("Monthly", func(t *testing.T) {
		rec := f.get(t, "/api/leaderboard/monthly?month=2026-03")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		resp := decodeBody[MonthlyLeaderboardResponse](t, rec)
		if resp.Month != "2026-03" || len(resp.Entries) != 2 {
			t.Errorf("resp = %+v, want 2026-03 with 2 entries", resp)
		}
	})

	t.Run("AllTime", func(t *testing.T) {
		rec := f.get(t, "/api/leaderboard/alltime?limit=1")
		resp := decodeBody[AllTimeLeaderboardResponse](t, rec)
		if len(resp.Entries) != 1 || resp.Entries[0].Points != 50 {
			t.Errorf("entries = %+v, want top with 50", resp.Entries)
		}
	})

	t.Run("BadLimit", func(t *testing.T) {
		rec := f.get(t, "/api/leaderboard/alltime?limit=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestPublishEventRoute(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	refID := uuid.New()

	t.Run("Accepted", func(t *testing.T) {
		body := `{"eventType":"COMMENT_CREATED","userId":"` + userID.String() +
			`","refType":"COMMENT","refId":"` + refID.String() +
			`","occurredAt":"2026-03-04T12:00:00Z"}`
		rec := f.postJSON(t, "/api/internal/events", body)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202 (%s)", rec.Code, rec.Body.String())
		}
		resp := decodeBody[PublishEventResponse](t, rec)
		if resp.MessageID == "" {
			t.Error("messageId is empty")
		}

		cmd := f.client.B().Xrange().Key(config.DefaultStreamKey).Start("-").End("+").Build()
		entries, err := f.client.Do(ctx, cmd).AsXRange()
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Fatalf("stream entries = %d, want 1", len(entries))
		}
		if entries[0].FieldValues["routingKey"] != "comment.created" {
			t.Errorf("routingKey = %q, want comment.created", entries[0].FieldValues["routingKey"])
		}
	})

	t.Run("UnknownEventType", func(t *testing.T) {
		body := `{"eventType":"NOPE","userId":"` + userID.String() + `"}`
		rec := f.postJSON(t, "/api/internal/events", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("BadUserID", func(t *testing.T) {
		body := `{"eventType":"COMMENT_CREATED","userId":"nope"}`
		rec := f.postJSON(t, "/api/internal/events", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("EmptyBody", func(t *testing.T) {
		rec := f.postJSON(t, "/api/internal/events", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
