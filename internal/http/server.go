package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strings"

	"mediaflow/internal/auth"
	"mediaflow/internal/config"
	"mediaflow/internal/domain/sharetoken"
	"mediaflow/internal/http/handler"
	"mediaflow/internal/http/middleware"
	"mediaflow/internal/rbac/presets"
	"mediaflow/internal/repository/postgres"
	"mediaflow/internal/storage"
	"mediaflow/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus       = "status"
	statusOK            = "ok"
	statusUnavailable   = "unavailable"
	requestBodyLimit    = "1M"
	maxFilesPerUpload   = 50
	multipartMIMEPrefix = "multipart/"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerDependencies struct {
	Config         *config.Config
	DB             Pinger
	ChurchRepo     *postgres.ChurchRepository
	UserRepo       *postgres.UserRepository
	EventRepo      *postgres.EventRepository
	ProjectRepo    *postgres.ProjectRepository
	MediaRepo      *postgres.MediaRepository
	CommentRepo    *postgres.CommentRepository
	ShareTokenRepo *postgres.ShareTokenRepository
	Objects        storage.ObjectStore
	Signer         *storage.Signer
	Reviewer       handler.Transitioner
	AuthMiddleware *auth.Middleware
	AuditLogger    AuditLogger
	CSRFMiddleware *middleware.CSRFMiddleware
	Metrics        *metrics.Metrics

	// EnableProfiling mounts /debug/pprof.
	EnableProfiling bool
}

// AuditLogger is what handlers write to and the admin audit view reads.
type AuditLogger interface {
	handler.AuditLogger
	handler.AuditQuerier
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

// uploadBodyLimit allows a full batch of maximum-size files plus form
// overhead.
func uploadBodyLimit(maxUploadSize int64) string {
	return fmt.Sprintf("%dK", maxUploadSize*maxFilesPerUpload/1024+1024)
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), multipartMIMEPrefix)
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first so every log line carries it.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.CORS(deps.Config.Server.CORSAllowedOrigins))
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(deps.Metrics.Middleware())
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Skipper: isMultipart,
		Limit:   requestBodyLimit,
	}))
	uploadLimit := echomiddleware.BodyLimit(uploadBodyLimit(deps.Config.App.MaxUploadSize))

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	// Share tokens are bearer secrets in the URL; throttle guessing per client.
	strictRateLimiter := middleware.NewStrictRateLimiter()

	cfg := deps.Config
	a := deps.AuthMiddleware
	csrf := deps.CSRFMiddleware.Middleware()
	perm := a.RequirePermission

	churchHandler := handler.NewChurchHandler(deps.ChurchRepo, deps.AuditLogger)
	userHandler := handler.NewUserHandler(deps.UserRepo, deps.CSRFMiddleware, deps.AuditLogger)
	eventHandler := handler.NewEventHandler(deps.EventRepo, deps.MediaRepo, deps.Objects, deps.AuditLogger)
	projectHandler := handler.NewProjectHandler(deps.ProjectRepo, deps.MediaRepo, deps.Objects, deps.AuditLogger)
	tokenHandler := handler.NewShareTokenHandler(deps.ShareTokenRepo, deps.EventRepo, deps.ProjectRepo, cfg.App.BaseURL, deps.AuditLogger)
	uploadHandler := handler.NewUploadHandler(deps.MediaRepo, deps.EventRepo, deps.EventRepo, deps.ProjectRepo, deps.Objects, cfg.App.MaxUploadSize, deps.AuditLogger)
	mediaHandler := handler.NewMediaHandler(deps.MediaRepo, deps.CommentRepo, deps.Reviewer, deps.Objects, cfg.App.MaxUploadSize, deps.AuditLogger)
	validateHandler := handler.NewValidateHandler(deps.EventRepo, deps.ProjectRepo, deps.MediaRepo, deps.Signer, deps.Reviewer, deps.AuditLogger)
	downloadHandler := handler.NewDownloadHandler(deps.EventRepo, deps.MediaRepo, deps.Signer, deps.Objects, deps.AuditLogger)
	settingsHandler := handler.NewSettingsHandler(cfg.App.BaseURL, cfg.App.MaxUploadSize, deps.Signer.TTL(), deps.AuditLogger)

	s := &Server{echo: e, deps: deps}

	e.GET("/health", s.healthCheck)
	deps.Metrics.RegisterMetricsRoute(e)
	if deps.EnableProfiling {
		registerProfiling(e)
	}
	e.GET("/settings", settingsHandler.GetSettings, a.PageGate(presets.SettingsView))

	api := e.Group("/api")

	session := api.Group("")
	session.Use(a.RequireAuth())
	session.Use(csrf)

	session.GET("/me", userHandler.Me)

	session.GET("/churches", churchHandler.ListChurches, perm(presets.ChurchesView))
	session.POST("/churches", churchHandler.CreateChurch, perm(presets.ChurchesManage))
	session.PATCH("/churches/:id", churchHandler.UpdateChurch, perm(presets.ChurchesManage))
	session.DELETE("/churches/:id", churchHandler.DeleteChurch, perm(presets.ChurchesManage))

	session.GET("/users", userHandler.ListUsers, perm(presets.UsersView))
	session.PATCH("/users/:id", userHandler.UpdateUser, perm(presets.UsersManage))

	session.GET("/events", eventHandler.ListEvents, perm(presets.EventsView))
	session.POST("/events", eventHandler.CreateEvent, perm(presets.EventsCreate))
	session.GET("/events/:id", eventHandler.GetEvent, perm(presets.EventsView))
	session.PATCH("/events/:id", eventHandler.UpdateEvent, perm(presets.EventsEdit))
	session.DELETE("/events/:id", eventHandler.DeleteEvent, perm(presets.EventsDelete))
	session.POST("/events/:id/tokens", tokenHandler.CreateEventToken, perm(presets.EventsShare))
	session.GET("/events/:id/tokens", tokenHandler.ListEventTokens, perm(presets.EventsShare))

	session.GET("/projects", projectHandler.ListProjects, perm(presets.EventsView))
	session.POST("/projects", projectHandler.CreateProject, perm(presets.EventsCreate))
	session.GET("/projects/:id", projectHandler.GetProject, perm(presets.EventsView))
	session.PATCH("/projects/:id", projectHandler.UpdateProject, perm(presets.EventsEdit))
	session.DELETE("/projects/:id", projectHandler.DeleteProject, perm(presets.EventsDelete))
	session.POST("/projects/:id/tokens", tokenHandler.CreateProjectToken, perm(presets.EventsShare))
	session.GET("/projects/:id/tokens", tokenHandler.ListProjectTokens, perm(presets.EventsShare))

	session.POST("/photos/upload", uploadHandler.UploadPhotos, uploadLimit, perm(presets.PhotosUpload))
	session.POST("/projects/:id/media", uploadHandler.UploadProjectMedia, uploadLimit, perm(presets.PhotosUpload))
	session.POST("/media/:id/versions", mediaHandler.AddVersion, uploadLimit, perm(presets.PhotosUpload))
	session.DELETE("/media/:id/comments/:commentId", mediaHandler.DeleteComment)

	session.GET("/audit", settingsHandler.ListAuditEvents, perm(presets.SettingsManage))

	// Review endpoints accept a ?token= share token in place of the session.
	// The media lookup runs first. CSRF only applies when the session cookie
	// was used.
	api.PATCH("/media/:id/status", mediaHandler.UpdateStatus, mediaHandler.RequireMedia, a.ResolveActor(sharetoken.TypeAny), csrf)
	api.GET("/media/:id/comments", mediaHandler.ListComments, mediaHandler.RequireMedia, a.ResolveActor(sharetoken.TypeValidator))
	api.POST("/media/:id/comments", mediaHandler.CreateComment, mediaHandler.RequireMedia, a.ResolveActor(sharetoken.TypeValidator), csrf)

	validate := api.Group("/validate/:token", strictRateLimiter.Middleware(), a.RequireShareToken(sharetoken.TypeValidator))
	validate.GET("", validateHandler.GetValidation)
	validate.PATCH("/photos/:photoId", validateHandler.DecidePhoto)

	download := api.Group("/download/:token", strictRateLimiter.Middleware(), a.RequireShareToken(sharetoken.TypeAny))
	download.GET("", downloadHandler.GetGallery)
	download.GET("/photo/:photoId", downloadHandler.GetPhotoLink)
	download.GET("/zip", downloadHandler.DownloadZip)

	return s
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthCheck(c echo.Context) error {
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(c.Request().Context()); err != nil {
			c.Logger().Error("health_db_unreachable", "error", err.Error())
			return c.JSON(stdhttp.StatusServiceUnavailable, map[string]string{
				jsonKeyStatus: statusUnavailable,
			})
		}
	}

	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}
