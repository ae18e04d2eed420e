package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fidelipark/loyalty-backend/internal/logger"
	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/repository"
)

// PointsStore is the client surface the admin endpoints need.
type PointsStore interface {
	GetByID(ctx context.Context, id uint64) (model.Client, error)
	AwardPoints(ctx context.Context, id uint64, points uint64) error
}

// AdminHandler serves back-office operations.  Points are credited here by
// an administrator after a parking session; clients only ever spend them.
type AdminHandler struct {
	Clients PointsStore
}

func NewAdminHandler(c PointsStore) *AdminHandler {
	return &AdminHandler{Clients: c}
}

type awardPointsReq struct {
	Points int64 `json:"points"`
}

// AwardPoints credits a client's balance and returns the new total.
func (h *AdminHandler) AwardPoints(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	var req awardPointsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Points <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": []fieldError{
			{Field: "points", Message: "points must be positive"},
		}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Clients.AwardPoints(ctx, id, uint64(req.Points)); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		logger.L().Error("points award failed", zap.Error(err), zap.Uint64("client_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	cl, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		logger.L().Error("client reload failed", zap.Error(err), zap.Uint64("client_id", id))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "points awarded",
		"client_id": cl.ID,
		"points":    cl.Points,
	})
}
