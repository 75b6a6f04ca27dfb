package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NutMontree/kiosk/internal/httpmiddleware"
)

// RouterOptions configures the cross-cutting middleware.
type RouterOptions struct {
	CORSOrigins     []string
	RateLimitPerMin int
}

// NewRouter builds the engine with middleware, ops endpoints and /api routes.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(httpmiddleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	limiter := httpmiddleware.NewTokenBucket(opts.RateLimitPerMin, opts.RateLimitPerMin)
	h.Routes(r.Group("/api"), limiter.Middleware())
	return r
}

// Routes mounts the kiosk API on api. The admin middleware wraps the
// auth and directory routes only; room and access-log routes serve the
// kiosk and lock hardware and are never throttled.
func (h *Handler) Routes(api *gin.RouterGroup, admin ...gin.HandlerFunc) {
	adm := api.Group("", admin...)
	adm.POST("/auth/register", h.Register)
	adm.POST("/auth/login", h.Login)
	adm.PUT("/auth/update-password", h.UpdatePassword)

	adm.GET("/teacher/status", h.TeacherStatus)
	adm.POST("/staff/add", h.AddStaff)
	adm.PUT("/staff/update", h.UpdateStaff)
	adm.DELETE("/staff/delete", h.DeleteStaff)
	adm.POST("/staff/delete-multiple", h.DeleteStaffBulk)

	adm.GET("/students", h.ListStudents)
	adm.GET("/student/:student_id", h.GetStudent)
	adm.POST("/student/add", h.AddStudent)
	adm.PUT("/student/update", h.UpdateStudent)
	adm.DELETE("/student/delete", h.DeleteStudent)
	adm.POST("/student/delete-multiple", h.DeleteStudentBulk)

	api.POST("/room/update", h.SetRoomLock)
	api.GET("/room/status/:room_id", h.RoomLockStatus)

	api.POST("/log/access", h.LogAccess)
	api.GET("/log/access", h.ListAccess)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{httpmiddleware.RequestIDHeader},
	}
	for _, o := range origins {
		if o == "*" {
			// Browsers reject credentials with a wildcard origin.
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
