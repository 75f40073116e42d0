package handlers

import (
	"net/http"

	"github.com/unrolled/render"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	render *render.Render
	logger *zap.Logger
}

func NewHealthHandler(db *gorm.DB, rnd *render.Render, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, render: rnd, logger: logger}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		h.logger.Error("HealthHandler.Healthz: database unreachable", zap.Error(err))
		h.render.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
