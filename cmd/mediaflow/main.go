package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	"mediaflow/internal/auth"
	"mediaflow/internal/cache"
	"mediaflow/internal/config"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/http"
	"mediaflow/internal/http/middleware"
	"mediaflow/internal/rbac"
	"mediaflow/internal/rbac/presets"
	"mediaflow/internal/repository/postgres"
	"mediaflow/internal/review"
	"mediaflow/internal/storage"
	"mediaflow/internal/storage/minio"
	"mediaflow/internal/storage/s3"
	"mediaflow/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	defaultEnvFilePath   = ".env"
	serverAddrPrefix     = ":"
	signalBufferSize     = 1
	logOutputFlags       = log.LstdFlags | log.Lshortfile
	cacheJanitorInterval = 5 * time.Minute
	startupTimeout       = 30 * time.Second
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	envFile := pflag.String("env-file", defaultEnvFilePath, "path to an optional .env file")
	migrate := pflag.Bool("migrate", true, "apply pending database migrations on start")
	migrateOnly := pflag.Bool("migrate-only", false, "apply migrations and exit")
	profiling := pflag.Bool("pprof", false, "expose /debug/pprof endpoints")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(logOutputFlags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Configuration loaded successfully")

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Database connection established")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStartup()

	if *migrate || *migrateOnly {
		if err := postgres.NewMigrator(db).Run(startupCtx); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		log.Println("Database migrations applied")
	}
	if *migrateOnly {
		return
	}

	objects, err := newObjectStore(startupCtx, &cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create object storage client: %v", err)
	}

	log.Printf("Object storage initialized (%s, bucket %s)", cfg.Storage.Backend, cfg.Storage.Bucket)

	appCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	urlCache, closeCache := newURLCache(appCtx, cfg.Redis.URL)
	defer closeCache()

	signer := storage.NewSigner(objects, urlCache, cfg.Storage.SignedURLTTL)

	churchRepo := postgres.NewChurchRepository(db)
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	mediaRepo := postgres.NewMediaRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	shareTokenRepo := postgres.NewShareTokenRepository(db)

	m := metrics.New()

	resolver := access.NewResolver(shareTokenRepo).WithObserver(m)
	reviewer := review.NewService(mediaRepo, review.ObserverFunc(func(from, to media.Status, result string) {
		m.ObserveTransition(string(from), string(to), result)
	}))

	checker := rbac.MustNew(presets.MediaFlow())
	jwtService := auth.NewJWTService(cfg.Session.Secret, cfg.Session.ExpiryDuration)
	authMiddleware := auth.NewMiddleware(jwtService, userRepo, resolver, checker)

	csrfMiddleware := middleware.NewCSRFMiddleware(appCtx)
	defer csrfMiddleware.Stop()

	serverDeps := &http.ServerDependencies{
		Config:         cfg,
		DB:             db,
		ChurchRepo:     churchRepo,
		UserRepo:       userRepo,
		EventRepo:      eventRepo,
		ProjectRepo:    projectRepo,
		MediaRepo:      mediaRepo,
		CommentRepo:    commentRepo,
		ShareTokenRepo: shareTokenRepo,
		Objects:        objects,
		Signer:         signer,
		Reviewer:       reviewer,
		AuthMiddleware: authMiddleware,
		AuditLogger:    audit.NewLogger(db.Pool),
		CSRFMiddleware: csrfMiddleware,
		Metrics:        m,

		EnableProfiling: *profiling,
	}

	server := http.NewServer(serverDeps)

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}

func newObjectStore(ctx context.Context, cfg *config.StorageConfig) (storage.ObjectStore, error) {
	if cfg.Backend == config.BackendMinio {
		client, err := minio.NewClient(&cfg.Minio, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return client, nil
	}

	return s3.NewClient(&cfg.AWS, cfg.Bucket)
}

// newURLCache uses redis when configured so signed URLs are shared between
// instances, and falls back to the in-process cache.
func newURLCache(ctx context.Context, redisURL string) (storage.URLCache, func()) {
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err == nil {
			log.Println("Signed URL cache: redis")
			return rc, func() { _ = rc.Close() }
		}
		log.Printf("Warning: redis unavailable, using in-memory URL cache: %v", err)
	}

	mem := cache.NewURLCache()
	go mem.RunJanitor(ctx, cacheJanitorInterval)
	return mem, func() {}
}
