package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/haccp-service/internal/api"
	grpcapi "github.com/St1cky1/haccp-service/internal/api/grpc"
	"github.com/St1cky1/haccp-service/internal/config"
	"github.com/St1cky1/haccp-service/internal/infrastructure/auth"
	"github.com/St1cky1/haccp-service/internal/infrastructure/client"
	"github.com/St1cky1/haccp-service/internal/infrastructure/storage"
	"github.com/St1cky1/haccp-service/internal/logger"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/St1cky1/haccp-service/internal/worker"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.LogLevel, logger.LogFormat(cfg.LogFormat))
	defer func() { _ = logger.Sync() }()
	log := logger.For("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalw("Application stopped with error", "error", err)
	}
	log.Info("Application stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	var wg sync.WaitGroup

	store, closeStore, err := openDocumentStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Репозитории
	taskRepo := repository.NewMonitoringTaskRepository(store)
	refRepo := repository.NewReferenceRepository(store)
	companyRepo := repository.NewCompanyRepository(store)
	accountRepo := repository.NewAccountRepository(store)
	refreshTokenRepo := repository.NewRefreshTokenRepository(store)
	auditRepo := repository.NewTaskAuditRepository(store)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Аудит: очередь, если RabbitMQ настроен, иначе сразу в хранилище
	var publisher usecase.IAuditPublisher
	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQ.URL(), cfg.AuditQueue, logger.For("rabbitmq"))
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer func() { _ = rabbitMQ.Close() }()
		publisher = rabbitMQ
		log.Infow("Connected to RabbitMQ", "queue", cfg.AuditQueue)

		auditWorker := worker.NewAuditWorker(cfg.RabbitMQ.URL(), cfg.AuditQueue, auditRepo, logger.For("audit_worker"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWorker.Start(workerCtx)
		}()
	} else {
		publisher = usecase.NewDirectAuditPublisher(auditRepo)
		log.Warn("RABBITMQ_HOST is not set, audit is written directly")
	}

	blobs, err := storage.NewBlobStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init blob storage: %w", err)
	}

	passwordManager := auth.NewPasswordManager()
	jwtManager := auth.NewJWTManager(cfg.JWTSecretKey)

	// Сервисы
	resolver := usecase.NewTenantResolver(companyRepo, logger.For("tenant"))
	workspaces := usecase.NewWorkspaceManager(resolver, taskRepo, refRepo, cfg.DraftTTL, logger.For("workspace"))
	authService := usecase.NewAuthService(accountRepo, refreshTokenRepo, passwordManager, jwtManager, logger.For("auth"))
	taskService := usecase.NewTaskService(taskRepo, workspaces, publisher, logger.For("tasks"))
	profileService := usecase.NewProfileService(accountRepo, companyRepo, refreshTokenRepo, resolver, blobs, passwordManager, logger.For("profile"))

	router := api.NewRouter(api.Services{
		Auth:       authService,
		Resolver:   resolver,
		Tasks:      taskService,
		Composer:   usecase.NewComposerService(workspaces, taskRepo, publisher, logger.For("composer")),
		References: usecase.NewReferenceService(refRepo, resolver, workspaces, logger.For("references")),
		Companies:  usecase.NewCompanyService(companyRepo, accountRepo, resolver, workspaces, logger.For("companies")),
		Profile:    profileService,
	}, logger.For("http"))

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpcapi.NewGRPCServer(taskService, profileService, authService, logger.For("grpc"))

	conn, err := grpcapi.Dial("localhost:" + cfg.GRPCPort)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	gateway, err := grpcapi.NewGatewayHandler(conn)
	if err != nil {
		return err
	}
	gatewayServer := &http.Server{
		Addr:              ":" + cfg.GatewayPort,
		Handler:           gateway,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		log.Infow("Starting HTTP server", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := grpcServer.Start(cfg.GRPCPort); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		log.Infow("Starting gRPC gateway", "port", cfg.GatewayPort)
		if err := gatewayServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("grpc gateway: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errCh:
		log.Errorw("Server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	}
	if err := gatewayServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Gateway shutdown failed", "error", err)
	}
	grpcServer.Stop()
	workerCancel()

	wg.Wait()
	return runErr
}

// openDocumentStore выбирает хранилище документов по DOCUMENT_STORE
func openDocumentStore(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (repository.IDocumentStore, func(), error) {
	switch cfg.DocumentStore {
	case config.StoreTypePostgres:
		if err := runMigrations(cfg.MigrationsPath, cfg.DB.URL(), log); err != nil {
			return nil, nil, err
		}
		pg, err := client.NewPostgresClient(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Infow("Connected to PostgreSQL", "host", cfg.DB.Host, "db", cfg.DB.Name)
		return repository.NewPostgresDocumentStore(pg.Pool), pg.Close, nil

	case config.StoreTypeSQLite:
		lite, err := client.NewSQLiteClient(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewSQLiteDocumentStore(ctx, lite.DB)
		if err != nil {
			_ = lite.Close()
			return nil, nil, err
		}
		log.Infow("Opened SQLite document store", "path", cfg.SQLitePath)
		return store, func() { _ = lite.Close() }, nil
	}

	log.Warn("Using in-memory document store, data is lost on restart")
	return repository.NewMemoryDocumentStore(), func() {}, nil
}

func runMigrations(source, dbURL string, log *zap.SugaredLogger) error {
	m, err := migrate.New(source, dbURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info("Migrations applied")
	return nil
}
