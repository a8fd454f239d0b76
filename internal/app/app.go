package app

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"net/http"

	"github.com/haguru/kakashi/config"
	"github.com/haguru/kakashi/internal/accountservice"
	assignmentMongoRepo "github.com/haguru/kakashi/internal/assignmentrepo/mongo"
	assignmentPostgresRepo "github.com/haguru/kakashi/internal/assignmentrepo/postgres"
	"github.com/haguru/kakashi/internal/assignmentservice"
	"github.com/haguru/kakashi/internal/auth"
	"github.com/haguru/kakashi/internal/collections"
	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/middleware"
	"github.com/haguru/kakashi/internal/models"
	principalMongoRepo "github.com/haguru/kakashi/internal/principalrepo/mongo"
	principalPostgresRepo "github.com/haguru/kakashi/internal/principalrepo/postgres"
	"github.com/haguru/kakashi/internal/routes"
	"github.com/haguru/kakashi/internal/server"
	"github.com/haguru/kakashi/pkg/databases/mongo"
	"github.com/haguru/kakashi/pkg/databases/postgres"
	"github.com/haguru/kakashi/pkg/metrics"
	zerologger "github.com/haguru/kakashi/pkg/zerolog"

	structValidator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	// Login attempts above this rate are shed before any bcrypt work runs.
	loginRatePerSecond = 5
	loginRateBurst     = 10
)

// App represents the main application, containing server and configuration.
// It initializes with a config file, validates settings, and wires the
// stores, services, gate, and routes together.
type App struct {
	Server     interfaces.Server
	Config     *config.ServiceConfig
	Logger     interfaces.Logger
	privateKey *ecdsa.PrivateKey
}

// NewApp creates and configures a new App instance.
func NewApp(configPath string) (*App, error) {
	cfg, err := config.ReadLocalConfig(configPath)
	if err != nil {
		return nil, err
	}

	validator := structValidator.New()
	if err := validator.Struct(cfg); err != nil {
		errors := err.(structValidator.ValidationErrors)
		return nil, fmt.Errorf("validation error: %s", errors)
	}

	logger := zerologger.NewZerologLogger(cfg.ServiceName)
	logger.SetLevel(cfg.LogLevel)

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Server = server.NewServer(cfg.Host, cfg.Port, logger)

	metricsInstance := app.initializeMetrics()

	if err := app.initializePrivateKey(); err != nil {
		return nil, fmt.Errorf("failed to initialize private key: %v", err)
	}

	dbClient, err := app.initializeDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database client: %v", err)
	}

	userRepo, adminRepo, assignmentRepo, err := app.initializeRepositories(dbClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %v", err)
	}

	userAccounts := accountservice.NewAccountService(userRepo, logger)
	adminAccounts := accountservice.NewAccountService(adminRepo, logger)
	assignments := assignmentservice.NewAssignmentService(assignmentRepo, logger, assignmentservice.Options{
		StrictTransitions: cfg.Compat.StrictTransitions,
		StrictAdminScope:  cfg.Compat.StrictAdminScope,
	})

	gate := middleware.NewAuthGate(&app.privateKey.PublicKey, userRepo, adminRepo,
		cfg.Compat.StrictRoleCheck, logger)

	route := routes.NewRoute(metricsInstance, userAccounts, adminAccounts, assignments,
		app.privateKey, validator, logger)

	if err := app.addRoutes(route, gate, metricsInstance); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *App) Run() error {
	if err := app.Server.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %v", err)
	}

	return nil
}

func (app *App) addRoutes(route *routes.Route, gate *middleware.AuthGate, metricsInstance interfaces.Metrics) error {
	metricsHandler := promhttp.HandlerFor(
		metricsInstance.GetRegistry(),
		promhttp.HandlerOpts{})
	tracedMetricsHandler := otelhttp.NewHandler(metricsHandler, routes.MetricsRouteAPI)

	loginLimiter := middleware.RateLimitMiddleware(
		rate.NewLimiter(rate.Limit(loginRatePerSecond), loginRateBurst),
		func() { metricsInstance.IncCounter(routes.LoginRateLimitedTotal) })

	table := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{routes.MetricsRouteAPI, tracedMetricsHandler.ServeHTTP},
		{routes.UserRegisterRouteAPI, route.UserRegister},
		{routes.UserLoginRouteAPI, loginLimiter(route.UserLogin)},
		{routes.AdminRegisterRouteAPI, route.AdminRegister},
		{routes.AdminLoginRouteAPI, loginLimiter(route.AdminLogin)},
		{routes.AssignmentUploadRouteAPI, gate.RequireRole(models.RoleUser, route.UploadAssignment)},
		{routes.AssignmentListRouteAPI, gate.RequireRole(models.RoleAdmin, route.ListAssignments)},
		{routes.AssignmentAcceptRouteAPI, gate.RequireRole(models.RoleAdmin, route.AcceptAssignment)},
		{routes.AssignmentRejectRouteAPI, gate.RequireRole(models.RoleAdmin, route.RejectAssignment)},
	}

	for _, entry := range table {
		if err := app.Server.AddRoute(entry.pattern, entry.handler); err != nil {
			return fmt.Errorf("failed to add route %s: %v", entry.pattern, err)
		}
	}

	return nil
}

func (app *App) initializeMetrics() interfaces.Metrics {
	appMetrics := metrics.NewMetrics(app.Config.ServiceName)

	appMetrics.RegisterCounterVec(routes.RegisterRequestsTotal, routes.RegisterRequestsTotalHelp, []string{routes.KindLabel})
	appMetrics.RegisterCounterVec(routes.RegisterErrorsTotal, routes.RegisterErrorsTotalHelp, []string{routes.KindLabel})
	appMetrics.RegisterHistogram(
		routes.RegisterDurationSeconds,
		routes.RegisterDurationSecondsHelp,
		routes.RegisterDurationSecondsBuckets)

	appMetrics.RegisterCounterVec(routes.LoginRequestsTotal, routes.LoginRequestsTotalHelp, []string{routes.KindLabel})
	appMetrics.RegisterCounterVec(routes.LoginSuccessTotal, routes.LoginSuccessTotalHelp, []string{routes.KindLabel})
	appMetrics.RegisterCounterVec(routes.LoginFailedTotal, routes.LoginFailedTotalHelp, []string{routes.KindLabel})
	appMetrics.RegisterHistogram(
		routes.LoginDurationSeconds,
		routes.LoginDurationSecondsHelp,
		routes.LoginDurationSecondsBuckets)

	appMetrics.RegisterCounter(routes.UploadRequestsTotal, routes.UploadRequestsTotalHelp)
	appMetrics.RegisterCounter(routes.UploadErrorsTotal, routes.UploadErrorsTotalHelp)
	appMetrics.RegisterCounter(routes.ListRequestsTotal, routes.ListRequestsTotalHelp)
	appMetrics.RegisterCounterVec(routes.ReviewRequestsTotal, routes.ReviewRequestsTotalHelp, []string{routes.ActionLabel})
	appMetrics.RegisterCounterVec(routes.ReviewErrorsTotal, routes.ReviewErrorsTotalHelp, []string{routes.ActionLabel})
	appMetrics.RegisterCounter(routes.LoginRateLimitedTotal, routes.LoginRateLimitedTotalHelp)

	return appMetrics
}

func (app *App) initializeDBClient() (interfaces.DBClient, error) {
	var dbClient interfaces.DBClient
	var err error

	switch app.Config.Database.Type {
	case "mongo":
		dbClient, err = mongo.NewMongoDB(&app.Config.Database.MongoDB, app.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB client: %v", err)
		}

		if err = dbClient.Connect(context.Background(), app.Config.Database.MongoDB.DSN); err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
		}

	case "postgres":
		dbClient = postgres.NewPostgresDatabaseClient(&app.Config.Database.Postgres, app.Logger)

		if err = dbClient.Connect(context.Background(), app.Config.Database.Postgres.DSN); err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
		}

	default:
		return nil, fmt.Errorf("unsupported database type: %s", app.Config.Database.Type)
	}

	return dbClient, nil
}

func (app *App) initializeRepositories(dbClient interfaces.DBClient) (
	userRepo, adminRepo interfaces.PrincipalRepository,
	assignmentRepo interfaces.AssignmentRepository, err error,
) {
	switch app.Config.Database.Type {
	case "mongo":
		userRepo, err = principalMongoRepo.NewMongoPrincipalRepository(dbClient, collections.Users)
		if err != nil {
			return nil, nil, nil, err
		}
		adminRepo, err = principalMongoRepo.NewMongoPrincipalRepository(dbClient, collections.Admins)
		if err != nil {
			return nil, nil, nil, err
		}
		assignmentRepo, err = assignmentMongoRepo.NewMongoAssignmentRepository(dbClient)
		if err != nil {
			return nil, nil, nil, err
		}

	case "postgres":
		userRepo, err = principalPostgresRepo.NewPostgresPrincipalRepository(dbClient, collections.Users)
		if err != nil {
			return nil, nil, nil, err
		}
		adminRepo, err = principalPostgresRepo.NewPostgresPrincipalRepository(dbClient, collections.Admins)
		if err != nil {
			return nil, nil, nil, err
		}
		assignmentRepo, err = assignmentPostgresRepo.NewPostgresAssignmentRepository(dbClient)
		if err != nil {
			return nil, nil, nil, err
		}

	default:
		return nil, nil, nil, fmt.Errorf("unsupported database type: %s", app.Config.Database.Type)
	}

	// Unique username per namespace and the admin lookup index live in the
	// store; create them up front.
	ctx := context.Background()
	if err = userRepo.EnsureIndices(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to ensure user indices: %v", err)
	}
	if err = adminRepo.EnsureIndices(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to ensure admin indices: %v", err)
	}
	if err = assignmentRepo.EnsureIndices(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to ensure assignment indices: %v", err)
	}

	return userRepo, adminRepo, assignmentRepo, nil
}

func (app *App) initializePrivateKey() error {
	if app.Config.PrivateKeyPath == "" {
		return fmt.Errorf("private key path is not provided in the configuration")
	}

	privateKey, err := auth.LoadECDSAPrivateKey(app.Config.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load private key: %v", err)
	}

	app.privateKey = privateKey
	return nil
}
