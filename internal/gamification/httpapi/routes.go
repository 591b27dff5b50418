// Package httpapi 는 게임화 서비스의 읽기 API와 내부 이벤트 발행 엔드포인트를 제공한다.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/park285/codepanel-gamification-go/internal/common/errors"
	"github.com/park285/codepanel-gamification-go/internal/common/health"
	commonhttputil "github.com/park285/codepanel-gamification-go/internal/common/httputil"
	"github.com/park285/codepanel-gamification-go/internal/gamification/model"
	gmq "github.com/park285/codepanel-gamification-go/internal/gamification/mq"
	"github.com/park285/codepanel-gamification-go/internal/gamification/repository"
	gsvc "github.com/park285/codepanel-gamification-go/internal/gamification/service"
)

const (
	apiErrorInvalidRequest = "INVALID_REQUEST"
	apiErrorUserNotFound   = "USER_NOT_FOUND"
	apiErrorInternalError  = "INTERNAL_ERROR"
)

const maxBodyBytes = 1 << 20

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Register 는 동작을 수행한다.
func Register(mux *http.ServeMux, repo *repository.Repository, leaderboards *gsvc.LeaderboardService, progress *gsvc.ProgressService, publisher *gmq.EventPublisher, logger *slog.Logger) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_ = commonhttputil.WriteJSON(w, http.StatusOK, health.Get())
	})

	mux.HandleFunc("GET /api/achievements", func(w http.ResponseWriter, r *http.Request) {
		handleListAchievements(w, r, repo, logger)
	})
	mux.HandleFunc("GET /api/users/{userId}/achievements", func(w http.ResponseWriter, r *http.Request) {
		handleUserAchievements(w, r, repo, logger)
	})
	mux.HandleFunc("GET /api/users/{userId}/progress", func(w http.ResponseWriter, r *http.Request) {
		handleUserProgress(w, r, progress, logger)
	})

	mux.HandleFunc("GET /api/leaderboard/weekly", func(w http.ResponseWriter, r *http.Request) {
		handleWeeklyLeaderboard(w, r, leaderboards, logger)
	})
	mux.HandleFunc("GET /api/leaderboard/monthly", func(w http.ResponseWriter, r *http.Request) {
		handleMonthlyLeaderboard(w, r, leaderboards, logger)
	})
	mux.HandleFunc("GET /api/leaderboard/alltime", func(w http.ResponseWriter, r *http.Request) {
		handleAllTimeLeaderboard(w, r, leaderboards, logger)
	})

	mux.HandleFunc("POST /api/internal/events", func(w http.ResponseWriter, r *http.Request) {
		handlePublishEvent(w, r, publisher, logger)
	})
}

func handleListAchievements(w http.ResponseWriter, r *http.Request, repo *repository.Repository, logger *slog.Logger) {
	defs, err := repo.ListAchievements(r.Context())
	if err != nil {
		respondError(w, err, "list_achievements_failed", logger)
		return
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, toAchievementResponses(defs))
}

func handleUserAchievements(w http.ResponseWriter, r *http.Request, repo *repository.Repository, logger *slog.Logger) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	rows, err := repo.ListUserAchievements(r.Context(), userID)
	if err != nil {
		respondError(w, err, "list_user_achievements_failed", logger)
		return
	}
	if rows == nil {
		rows = []repository.UserAchievementView{}
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, rows)
}

func handleUserProgress(w http.ResponseWriter, r *http.Request, progress *gsvc.ProgressService, logger *slog.Logger) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	rows, err := progress.UserProgress(r.Context(), userID)
	if err != nil {
		respondError(w, err, "user_progress_failed", logger)
		return
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, toProgressResponses(rows))
}

func handleWeeklyLeaderboard(w http.ResponseWriter, r *http.Request, leaderboards *gsvc.LeaderboardService, logger *slog.Logger) {
	weekStart := model.WeekStart(time.Now().UTC())
	if raw := strings.TrimSpace(r.URL.Query().Get("weekStart")); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidRequest, "weekStart must be yyyy-MM-dd")
			return
		}
		weekStart = model.WeekStart(parsed)
	}

	page, ok := queryInt(w, r, "page", 0)
	if !ok {
		return
	}
	size, ok := queryInt(w, r, "size", defaultPageSize)
	if !ok {
		return
	}
	size = clampSize(size)

	entries, err := leaderboards.Weekly(r.Context(), weekStart, page, size)
	if err != nil {
		respondError(w, err, "weekly_leaderboard_failed", logger)
		return
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, WeeklyLeaderboardResponse{
		WeekStart: weekStart.Format(time.DateOnly),
		Page:      page,
		Size:      size,
		Entries:   entries,
	})
}

func handleMonthlyLeaderboard(w http.ResponseWriter, r *http.Request, leaderboards *gsvc.LeaderboardService, logger *slog.Logger) {
	month := model.MonthStart(time.Now().UTC())
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidRequest, "month must be yyyy-MM")
			return
		}
		month = parsed
	}

	limit, ok := queryInt(w, r, "limit", defaultPageSize)
	if !ok {
		return
	}
	limit = clampSize(limit)

	entries, err := leaderboards.Monthly(r.Context(), month, limit)
	if err != nil {
		respondError(w, err, "monthly_leaderboard_failed", logger)
		return
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, MonthlyLeaderboardResponse{
		Month:   model.MonthKey(month),
		Entries: entries,
	})
}

func handleAllTimeLeaderboard(w http.ResponseWriter, r *http.Request, leaderboards *gsvc.LeaderboardService, logger *slog.Logger) {
	limit, ok := queryInt(w, r, "limit", defaultPageSize)
	if !ok {
		return
	}
	limit = clampSize(limit)

	entries, err := leaderboards.AllTime(r.Context(), limit)
	if err != nil {
		respondError(w, err, "alltime_leaderboard_failed", logger)
		return
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, AllTimeLeaderboardResponse{Entries: entries})
}

func handlePublishEvent(w http.ResponseWriter, r *http.Request, publisher *gmq.EventPublisher, logger *slog.Logger) {
	var req PublishEventRequest
	if err := commonhttputil.ReadJSON(r, &req, maxBodyBytes); err != nil {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidRequest, err.Error())
		return
	}

	event, err := toGamificationEvent(req)
	if err != nil {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidRequest, err.Error())
		return
	}

	id, err := publisher.Publish(r.Context(), event)
	if err != nil {
		respondError(w, err, "publish_event_failed", logger)
		return
	}
	_ = commonhttputil.WriteJSON(w, http.StatusAccepted, PublishEventResponse{MessageID: id})
}

func toGamificationEvent(req PublishEventRequest) (model.GamificationEvent, error) {
	eventType, err := model.ParseScoreEventType(req.EventType)
	if err != nil {
		return model.GamificationEvent{}, err
	}

	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return model.GamificationEvent{}, errors.New("userId must be a UUID")
	}

	difficulty, err := model.ParseDifficultyLevel(req.Difficulty)
	if err != nil {
		return model.GamificationEvent{}, err
	}

	var refTypePtr *string
	if refType := strings.TrimSpace(req.RefType); refType != "" {
		refTypePtr = &refType
	}

	var refIDPtr *uuid.UUID
	if raw := strings.TrimSpace(req.RefID); raw != "" {
		refID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return model.GamificationEvent{}, errors.New("refId must be a UUID")
		}
		refIDPtr = &refID
	}

	occurredAt := time.Now().UTC()
	if raw := strings.TrimSpace(req.OccurredAt); raw != "" {
		parsed, parseErr := time.Parse(time.RFC3339Nano, raw)
		if parseErr != nil {
			return model.GamificationEvent{}, errors.New("occurredAt must be RFC3339")
		}
		occurredAt = parsed.UTC()
	}

	return model.GamificationEvent{
		EventType:  eventType,
		UserID:     userID,
		Difficulty: difficulty,
		RefType:    refTypePtr,
		RefID:      refIDPtr,
		OccurredAt: occurredAt,
	}, nil
}

func pathUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.PathValue("userId"))
	userID, err := uuid.Parse(raw)
	if err != nil {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidRequest, "userId must be a UUID")
		return "", false
	}
	return userID.String(), true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return value, true
}

func clampSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

func respondError(w http.ResponseWriter, err error, logEvent string, logger *slog.Logger) {
	status := http.StatusInternalServerError
	code := apiErrorInternalError

	var notFound cerrors.UserNotFoundError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		code = apiErrorUserNotFound
	} else {
		logger.Error(logEvent, "err", err)
	}

	_ = commonhttputil.WriteErrorJSON(w, status, code, err.Error())
}
