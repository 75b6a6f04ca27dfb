package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NutMontree/kiosk/internal/account"
	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/attendance"
	"github.com/NutMontree/kiosk/internal/directory"
	"github.com/NutMontree/kiosk/internal/room"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler serves the kiosk API. It holds no mutable state of its own.
type Handler struct {
	accounts *account.Service
	staff    *directory.StaffService
	students *directory.StudentService
	rooms    *room.Service
	logs     *attendance.Service
	checks   map[string]HealthCheck
	now      func() time.Time
}

// Deps are the services a Handler dispatches to.
type Deps struct {
	Accounts *account.Service
	Staff    *directory.StaffService
	Students *directory.StudentService
	Rooms    *room.Service
	Logs     *attendance.Service
	Checks   map[string]HealthCheck
}

func New(d Deps) *Handler {
	return &Handler{
		accounts: d.Accounts,
		staff:    d.Staff,
		students: d.Students,
		rooms:    d.Rooms,
		logs:     d.Logs,
		checks:   d.Checks,
		now:      time.Now,
	}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.checks {
		err := check(ctx)
		body[name] = err == nil
		if err != nil {
			log.Printf("healthz: %s: %v", name, err)
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ---------- helpers ----------

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// fail writes err using its kind. Internal causes are logged, never returned.
func fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	message(c, status, apperr.Message(err))
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		message(c, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}
