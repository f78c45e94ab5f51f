package api

import (
	"github.com/labstack/echo/v4"

	"StorkPull/internal/domain/models"
	xhttp "StorkPull/pkg/http"
	"StorkPull/pkg/http/middleware"
	applogger "StorkPull/pkg/logger"
)

// StatusSource lists the supervised accounts.
type StatusSource interface {
	Statuses() []models.AccountStatus
}

// StatusHandler serves read-only account status.
type StatusHandler struct {
	src StatusSource
	l   *applogger.Logger
}

var _ xhttp.Handler = (*StatusHandler)(nil)

func NewStatusHandler(src StatusSource, l *applogger.Logger) *StatusHandler {
	return &StatusHandler{src: src, l: l}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", middleware.RateLimit(middleware.NewLimiter(20, 5)))
	g.GET("/accounts", h.List)
	g.GET("/accounts/:username", h.Get)
}

// List returns every account.
func (h *StatusHandler) List(c echo.Context) error {
	rows := h.src.Statuses()
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Get returns one account by username.
func (h *StatusHandler) Get(c echo.Context) error {
	name := c.Param("username")
	for _, st := range h.src.Statuses() {
		if st.Username == name {
			return xhttp.SuccessResponse(c, st)
		}
	}
	h.l.Debug("status lookup miss", applogger.String("username", name))
	return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("account %s not found", name))
}
