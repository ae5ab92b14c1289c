package server

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prodtrack/internal/auth"
	"prodtrack/internal/config"
	"prodtrack/internal/handlers"
	"prodtrack/internal/middleware"
	"prodtrack/internal/models"
	"prodtrack/internal/tracking"
)

const sessionName = "prodtrack_session"

type Deps struct {
	Config   *config.Config
	Managers *tracking.Managers
	Users    middleware.UserFinder
	Tokens   *auth.Tokens
	Log      *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(d.Config.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.InjectActor(d.Users, d.Tokens))

	h := handlers.New(d.Managers, d.Tokens, d.Log)

	// AUTH
	r.POST("/login", h.Auth.Login)
	r.POST("/logout", h.Auth.Logout)
	r.POST("/api/token", h.Auth.Token)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())

	api.GET("/me", h.Auth.Me)
	api.PUT("/profile", h.User.UpdateProfile)
	api.PUT("/profile/password", h.User.UpdatePassword)

	// ITEMS
	api.GET("/items", h.Item.List)
	api.POST("/items", h.Item.Create)
	api.GET("/items/export", h.Dashboard.Export)
	api.GET("/items/:id", h.Item.Get)
	api.DELETE("/items/:id", h.Item.Delete)
	api.PATCH("/items/:id/status", h.Item.UpdateStatus)
	api.PATCH("/items/:id/output", h.Item.UpdateOutput)
	api.POST("/items/:id/notes", h.Item.AddNote)
	api.POST("/items/:id/processes", h.Process.Create)

	// PROCESSES
	api.PATCH("/processes/:id/status", h.Process.UpdateStatus)
	api.PATCH("/processes/:id/assignee", h.Process.Assign)
	api.POST("/processes/:id/notes", h.Process.AddNote)
	api.POST("/processes/:id/delays", h.Process.ReportDelay)
	api.GET("/processes/:id/history", h.Process.History)

	api.GET("/my/processes", h.Process.Mine)
	api.GET("/my/items", h.Assignment.MyItems)

	// ASSIGNMENTS
	api.GET("/assignments", h.Assignment.List)
	api.POST("/assignments", h.Assignment.Create)
	api.GET("/assignments/stats", h.Assignment.Stats)
	api.GET("/assignments/board", h.Dashboard.AssignmentBoard)
	api.DELETE("/assignments/:id", h.Assignment.Delete)

	// USERS
	api.GET("/users/assignable", h.User.Assignable)
	admin := api.Group("/users", middleware.RequireRole(models.RoleAdmin))
	admin.GET("", h.User.List)
	admin.POST("", h.User.Create)
	admin.PUT("/:id", h.User.Update)
	admin.DELETE("/:id", h.User.Delete)

	// DASHBOARDS
	api.GET("/dashboard/admin", h.Dashboard.Admin)
	api.GET("/dashboard/encoder", h.Dashboard.Encoder)
	api.GET("/dashboard/employee", h.Dashboard.Employee)
	api.GET("/analytics", h.Dashboard.Analytics)
	api.GET("/audit", h.Dashboard.Audit)

	// REFERENCE DATA
	api.GET("/departments", h.Item.Departments)
	api.GET("/machines", h.Item.Machines)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
