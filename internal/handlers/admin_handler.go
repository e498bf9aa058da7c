package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"passtrack/internal/auth"
	"passtrack/internal/models"
	"passtrack/internal/services"
)

// AutoupdateTrigger запускает прогон автообновления вне расписания.
type AutoupdateTrigger interface {
	RunOnce(ctx context.Context) error
}

// AdminHandler обрабатывает HTTP-запросы ops API.
type AdminHandler struct {
	orders     services.OrderService
	autoupdate AutoupdateTrigger

	adminLogin        string
	adminPasswordHash string
	jwtSecret         string
	tokenExpiration   time.Duration
}

// NewAdminHandler создаёт новый экземпляр AdminHandler.
func NewAdminHandler(
	orders services.OrderService,
	autoupdate AutoupdateTrigger,
	adminLogin, adminPasswordHash, jwtSecret string,
	tokenExpiration time.Duration,
) *AdminHandler {
	return &AdminHandler{
		orders:            orders,
		autoupdate:        autoupdate,
		adminLogin:        adminLogin,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
		tokenExpiration:   tokenExpiration,
	}
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
	var req models.LoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	if req.Login == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "login and password are required")
	}

	if h.adminLogin == "" || h.adminPasswordHash == "" {
		return echo.NewHTTPError(http.StatusForbidden, "ops API is not configured")
	}

	if req.Login != h.adminLogin || !auth.CheckPassword(req.Password, h.adminPasswordHash) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid login or password")
	}

	token, err := auth.GenerateToken(req.Login, h.jwtSecret, h.tokenExpiration)
	if err != nil {
		c.Logger().Errorf("failed to generate token: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// ListOrders обрабатывает GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	orders, err := h.orders.Active(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("failed to list orders: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	resp := make([]*models.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, &models.OrderResponse{
			UID:                o.UID,
			ShortUID:           o.ShortUID,
			UserID:             o.UserID,
			ReceptionDate:      o.ReceptionDate,
			StatusName:         o.StatusName,
			StatusInternalName: o.StatusInternalName,
			StatusPercent:      o.StatusPercent,
			IsDeleted:          o.IsDeleted,
			UpdatedAt:          o.UpdatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// OrderAudits обрабатывает GET /api/admin/orders/:uid/audits.
func (h *AdminHandler) OrderAudits(c echo.Context) error {
	orderUID := c.Param("uid")

	audits, err := h.orders.AuditTrail(c.Request().Context(), orderUID)
	if err != nil {
		c.Logger().Errorf("failed to get audit trail: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	resp := make([]*models.AuditResponse, 0, len(audits))
	for _, a := range audits {
		resp = append(resp, &models.AuditResponse{
			OrderUID:              a.OrderUID,
			OldStatusName:         a.OldStatusName,
			NewStatusName:         a.NewStatusName,
			OldStatusInternalName: a.OldStatusInternalName,
			NewStatusInternalName: a.NewStatusInternalName,
			OldStatusPercent:      a.OldStatusPercent,
			NewStatusPercent:      a.NewStatusPercent,
			IsDeleted:             a.IsDeleted,
			CreatedAt:             a.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// TriggerAutoupdate обрабатывает POST /api/admin/autoupdate.
// Прогон стартует в фоне и переживает запрос; повторный триггер при
// активном прогоне отклоняется сразу с 409.
func (h *AdminHandler) TriggerAutoupdate(c echo.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.autoupdate.RunOnce(context.Background())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, services.ErrRunInProgress) {
			return echo.NewHTTPError(http.StatusConflict, "autoupdate run already in progress")
		}
		if err != nil {
			c.Logger().Errorf("autoupdate run failed: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
		return c.NoContent(http.StatusAccepted)
	case <-time.After(100 * time.Millisecond):
		return c.NoContent(http.StatusAccepted)
	}
}
