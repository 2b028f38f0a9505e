package http

import (
	"log/slog"

	"github.com/geocoder89/coursehub/internal/authn"
	"github.com/geocoder89/coursehub/internal/cache"
	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/http/handlers"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "coursehub"

// Deps is everything the router needs from main. Cache and Metrics are optional.
type Deps struct {
	Log     *slog.Logger
	Config  config.Config
	Users   UsersStore
	Courses handlers.CoursesStore
	Cache   cache.Store
	Metrics *observability.Prom
	Ready   map[string]handlers.Pinger
}

// UsersStore covers both registration and credential lookup.
type UsersStore interface {
	handlers.UsersStore
	authn.UserFinder
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.Default()
	}

	if d.Config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(otelgin.Middleware(serviceName))
	if d.Metrics != nil {
		r.Use(d.Metrics.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(d.Config.IsProd()))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))

	// health
	h := handlers.NewHealthHandler(d.Log, d.Ready)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	hasher := security.NewHasher(d.Config.BcryptCost)
	auth := middlewares.NewAuthMiddleware(authn.New(d.Users, hasher), d.Log, d.Metrics)

	usersHandler := handlers.NewUsersHandler(d.Users, hasher, d.Log)
	coursesHandler := handlers.NewCoursesHandler(d.Courses, auth, d.Cache, d.Metrics, d.Log)

	api := r.Group("/api")

	api.GET("/users", auth.RequireAuth(), usersHandler.CurrentUser)
	api.POST("/users", usersHandler.CreateUser)

	api.GET("/courses", coursesHandler.ListCourses)
	api.GET("/courses/:id", coursesHandler.GetCourse)
	// auth runs inside these handlers, after the body is validated
	api.POST("/courses", coursesHandler.CreateCourse)
	api.PUT("/courses/:id", coursesHandler.UpdateCourse)
	api.DELETE("/courses/:id", coursesHandler.DeleteCourse)

	return r
}
