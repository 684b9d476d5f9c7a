package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/interfaces/middleware"
	"social-scheduler/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
)

type IScheduleHandler interface {
	Create(ctx *gin.Context)
	List(ctx *gin.Context)
	Get(ctx *gin.Context)
	Cancel(ctx *gin.Context)
	Attempts(ctx *gin.Context)
	ListVideos(ctx *gin.Context)
	GetVideo(ctx *gin.Context)
}

type ScheduleHandler struct {
	scheduleUsecase usecase.IScheduleUsecase
}

func NewScheduleHandler(uc usecase.IScheduleUsecase) IScheduleHandler {
	return &ScheduleHandler{scheduleUsecase: uc}
}

type listQuery struct {
	Kind   string `form:"kind"`
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// Create handles POST /api/schedules/:kind
func (h *ScheduleHandler) Create(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	kind, ok := model.ParseKind(ctx.Param("kind"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown kind: " + ctx.Param("kind")})
		return
	}

	var (
		payload      model.Payload
		scheduledFor time.Time
	)
	switch kind {
	case model.KindTweet:
		var req dto.CreateTweetRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		payload, scheduledFor = &model.TweetPayload{Text: req.Text}, req.ScheduledFor
	case model.KindLinkedInPost:
		var req dto.CreateLinkedInPostRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		payload = &model.LinkedInPayload{Content: req.Content, Title: req.Title, ImageURL: req.ImageURL}
		scheduledFor = req.ScheduledFor
	case model.KindYouTubeVideo:
		var req dto.CreateYouTubeVideoRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		payload = &model.YouTubePayload{
			Title:        req.Title,
			Description:  req.Description,
			VideoURL:     req.VideoURL,
			ThumbnailURL: req.ThumbnailURL,
			Tags:         req.Tags,
			Privacy:      req.Privacy,
		}
		scheduledFor = req.ScheduledFor
	}

	item, err := h.scheduleUsecase.Create(ctx.Request.Context(), userID, payload, scheduledFor)
	if err != nil {
		writeError(ctx, err, "schedule create failed")
		return
	}
	ctx.JSON(http.StatusCreated, item)
}

// List handles GET /api/schedules
func (h *ScheduleHandler) List(ctx *gin.Context) {
	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}
	filter := model.ListFilter{Status: model.Status(q.Status), Limit: q.Limit, Offset: q.Offset}
	if q.Kind != "" {
		kind, ok := model.ParseKind(q.Kind)
		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind: " + q.Kind})
			return
		}
		filter.Kind = kind
	}

	items, err := h.scheduleUsecase.List(ctx.Request.Context(), middleware.UserID(ctx), filter)
	if err != nil {
		writeError(ctx, err, "schedule list failed")
		return
	}
	page := filter.Normalize()
	res := dto.ScheduleListResponse{Items: items, Limit: page.Limit, Offset: page.Offset}
	if len(items) == page.Limit {
		next := page
		next.Offset += page.Limit
		if v, err := query.Values(next); err == nil {
			res.Next = ctx.Request.URL.Path + "?" + v.Encode()
		}
	}
	ctx.JSON(http.StatusOK, res)
}

// Get handles GET /api/schedules/:kind/:id
func (h *ScheduleHandler) Get(ctx *gin.Context) {
	kind, id, ok := itemRef(ctx)
	if !ok {
		return
	}
	item, err := h.scheduleUsecase.Get(ctx.Request.Context(), middleware.UserID(ctx), kind, id)
	if err != nil {
		writeError(ctx, err, "schedule lookup failed")
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// Cancel handles DELETE /api/schedules/:kind/:id
func (h *ScheduleHandler) Cancel(ctx *gin.Context) {
	kind, id, ok := itemRef(ctx)
	if !ok {
		return
	}
	item, err := h.scheduleUsecase.Cancel(ctx.Request.Context(), middleware.UserID(ctx), kind, id)
	if err != nil {
		writeError(ctx, err, "schedule cancel failed")
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// Attempts handles GET /api/schedules/:kind/:id/attempts
func (h *ScheduleHandler) Attempts(ctx *gin.Context) {
	kind, id, ok := itemRef(ctx)
	if !ok {
		return
	}
	attempts, err := h.scheduleUsecase.ListAttempts(ctx.Request.Context(), middleware.UserID(ctx), kind, id)
	if err != nil {
		writeError(ctx, err, "attempt lookup failed")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"kind": kind, "id": id, "attempts": attempts})
}

// ListVideos handles GET /api/youtube/videos
func (h *ScheduleHandler) ListVideos(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	offset, _ := strconv.Atoi(ctx.Query("offset"))
	videos, err := h.scheduleUsecase.ListVideos(ctx.Request.Context(), middleware.UserID(ctx), limit, offset)
	if err != nil {
		writeError(ctx, err, "video list failed")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": videos})
}

// GetVideo handles GET /api/youtube/videos/:videoId
func (h *ScheduleHandler) GetVideo(ctx *gin.Context) {
	video, err := h.scheduleUsecase.GetVideo(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("videoId"))
	if err != nil {
		writeError(ctx, err, "video lookup failed")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": video})
}

func itemRef(ctx *gin.Context) (model.Kind, int64, bool) {
	kind, ok := model.ParseKind(ctx.Param("kind"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown kind: " + ctx.Param("kind")})
		return "", 0, false
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return "", 0, false
	}
	return kind, id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrScheduleInPast):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, model.ErrDispatchFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(ctx *gin.Context, err error, msg string) {
	status := statusFor(err)
	entry := logger.GetLogger().WithField("error", err).WithField("user_id", middleware.UserID(ctx))
	if status >= http.StatusInternalServerError {
		entry.Error(msg)
	} else {
		entry.Warn(msg)
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
