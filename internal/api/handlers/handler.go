package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"taskguardian/internal/auth"
	"taskguardian/internal/models"
	"taskguardian/internal/repository"
	"taskguardian/internal/ws"
	"taskguardian/pkg/logger"
)

// tasksCacheKey holds the cached task list; every task mutation drops it.
const (
	tasksCacheKey = "tasks:all"
	cacheTTL      = time.Hour
)

// Handler carries every dependency the HTTP surface needs. All of it is
// injected at construction; there is no package-level state here.
type Handler struct {
	Users    *repository.UserStore
	Tasks    *repository.TaskStore
	Cache    *redis.Client
	Tokens   *auth.TokenManager
	Validate *validator.Validate
	Hub      *ws.Hub
	Ctx      context.Context
}

// New wires the stores and validation for a database connection. Hub may
// be nil when no websocket surface is mounted (tests do this).
func New(db *sql.DB, cache *redis.Client, tokens *auth.TokenManager, hub *ws.Hub) *Handler {
	return &Handler{
		Users:    repository.NewUserStore(db),
		Tasks:    repository.NewTaskStore(db),
		Cache:    cache,
		Tokens:   tokens,
		Validate: validator.New(),
		Hub:      hub,
		Ctx:      context.Background(),
	}
}

func (h *Handler) publish(action string, task models.Task) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(action, task)
}

// dropTasksCache invalidates the cached list after any task mutation.
// Cache trouble is logged, never surfaced to the caller.
func (h *Handler) dropTasksCache() {
	if err := h.Cache.Del(h.Ctx, tasksCacheKey).Err(); err != nil {
		logger.ErrorLogger.Error("Error invalidating tasks cache", zap.Error(err))
	}
}
