package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"nutriflow/internal/adapter/api"
	"nutriflow/internal/adapter/api/handler"
	apimiddleware "nutriflow/internal/adapter/api/middleware"
	"nutriflow/internal/adapter/api/router"
	"nutriflow/internal/adapter/repository"
	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/service"
	"nutriflow/internal/infrastructure/firebase"
	"nutriflow/internal/infrastructure/firestoredb"
	"nutriflow/internal/infrastructure/jobs"
	"nutriflow/internal/infrastructure/memstore"
	"nutriflow/internal/infrastructure/ratelimit"
	"nutriflow/internal/infrastructure/session"
	"nutriflow/internal/infrastructure/storage"
	"nutriflow/internal/infrastructure/websocket"
	"nutriflow/internal/usecase"
	"nutriflow/pkg/config"
)

const memoryFilesPath = "/files"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	allowedOrigins := splitOrigins(cfg.AllowedOrigins)

	var (
		store       docstore.DocumentStore
		identity    session.IdentityClient
		files       service.FileUploadService
		memoryFiles *storage.MemoryStorage
		devIdentity bool
	)

	if cfg.StoreBackend == config.StoreBackendMemory {
		log.Printf("Using in-memory document store and development identities")
		store = memstore.New()
		identity = firebase.NewDevAuthClient()
		devIdentity = true
		memoryFiles = storage.NewMemoryStorage(memoryFilesPath)
		files = memoryFiles
	} else {
		opts := credentials(cfg)

		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}

		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		identity = firebase.NewFirebaseAuthClient(authClient)

		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		store = firestoredb.New(firestoreClient)

		if cfg.StorageBucket != "" {
			storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, allowedOrigins, opts...)
			if err != nil {
				log.Fatalf("Failed to initialize Cloud Storage: %v", err)
			}
			files = storageClient
		} else {
			log.Printf("STORAGE_BUCKET not set, keeping uploads in memory")
			memoryFiles = storage.NewMemoryStorage(memoryFilesPath)
			files = memoryFiles
		}
	}
	defer files.Close()

	userRepo := repository.NewDocumentUserRepository(store)
	patientRepo := repository.NewDocumentPatientRepository(store)
	appointmentRepo := repository.NewDocumentAppointmentRepository(store)
	dietPlanRepo := repository.NewDocumentDietPlanRepository(store)
	financialRepo := repository.NewDocumentFinancialRepository(store)
	chatRepo := repository.NewDocumentChatRepository(store)

	provider := session.NewProvider(identity)

	rateLimiter := ratelimit.NewRateLimiter(cfg.MessageRatePerMin)
	rateLimiter.StartCleanupRoutine(ctx)

	synchronizer := usecase.NewSynchronizer(store, chatRepo)

	patientUseCase := usecase.NewPatientUseCase(patientRepo)
	appointmentUseCase := usecase.NewAppointmentUseCase(appointmentRepo, patientRepo)
	dietPlanUseCase := usecase.NewDietPlanUseCase(dietPlanRepo)
	financialUseCase := usecase.NewFinancialUseCase(financialRepo, patientRepo)
	chatUseCase := usecase.NewChatUseCase(chatRepo, synchronizer, rateLimiter)
	profileUseCase := usecase.NewProfileUseCase(userRepo, provider, files, cfg.MaxUploadBytes)
	dashboardUseCase := usecase.NewDashboardUseCase(patientRepo, appointmentUseCase, financialUseCase)

	handler.Setup(
		patientUseCase,
		appointmentUseCase,
		dietPlanUseCase,
		financialUseCase,
		chatUseCase,
		profileUseCase,
		dashboardUseCase,
		cfg.MaxUploadBytes,
	)
	handler.SetupDevTokenHandler(provider)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)
	wsHandler := handler.NewWebSocketHandler(ctx, wsManager, provider, store, handler.WebSocketUseCases{
		Chat:         chatUseCase,
		Appointments: appointmentUseCase,
		DietPlans:    dietPlanUseCase,
		Financial:    financialUseCase,
	}, cfg.LoginPath, allowedOrigins)
	handler.SetupHealthHandler(cfg.StoreBackend, wsHandler)

	reconcileJob := jobs.NewReconcileJob(synchronizer, 0)
	scheduler, err := jobs.NewScheduler(ctx, cfg.ReconcileSchedule, reconcileJob)
	if err != nil {
		log.Fatalf("Invalid RECONCILE_SCHEDULE %q: %v", cfg.ReconcileSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: allowedOrigins}))
	e.Use(middleware.BodyLimit("8M"))

	httpLimiter := apimiddleware.NewRateLimiter(300, time.Minute)
	httpLimiter.StartCleanupRoutine(ctx)
	e.Use(httpLimiter.RateLimitMiddleware())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(provider, cfg.LoginPath)

	router.Setup(e, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)
	router.SetupDevRouter(e, devIdentity)
	if memoryFiles != nil {
		router.SetupFileRouter(e, handler.NewFileHandler(memoryFiles))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped with error: %v", err)
	}
}

// credentials picks the service account from FIREBASE_SERVICE_ACCOUNT_JSON,
// then FIREBASE_SERVICE_ACCOUNT_PATH, then application default credentials.
func credentials(cfg *config.Config) []option.ClientOption {
	if cfg.ServiceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))}
	}
	if cfg.ServiceAccountPath != "" {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.ServiceAccountPath)}
	}
	log.Printf("Using application default credentials")
	return nil
}

func splitOrigins(value string) []string {
	var origins []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
