package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/hrms-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/hrms-backend-go/internal/service/auth"
	companyService "github.com/cmlabs-hris/hrms-backend-go/internal/service/company"
	deviceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/device"
	employeeService "github.com/cmlabs-hris/hrms-backend-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hrms-backend-go/internal/service/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/master"
	reportService "github.com/cmlabs-hris/hrms-backend-go/internal/service/report"
	transferService "github.com/cmlabs-hris/hrms-backend-go/internal/service/transfer"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	accessTTL, _ := time.ParseDuration(cfg.JWT.AccessExpiration)
	refreshTTL, _ := time.ParseDuration(cfg.JWT.RefreshExpiration)
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, accessTTL, refreshTTL)
	googleService := oauth.NewGoogleService(
		cfg.OAuth2Google.ClientID,
		cfg.OAuth2Google.ClientSecret,
		cfg.OAuth2Google.RedirectURL,
		cfg.OAuth2Google.Scopes,
	)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("preparing file storage: %w", err)
	}

	tx := postgresql.NewTransactor(db)

	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	deviceRepo := postgresql.NewDeviceRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)
	punchLogRepo := postgresql.NewPunchLogRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveApplicationRepo := postgresql.NewLeaveApplicationRepository(db)
	transferRepo := postgresql.NewTransferRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	reconciler := attendanceService.NewReconciler(policyRepo, branchRepo, attendanceRepo, tx)
	syncer := attendanceService.NewDeviceSyncer(deviceRepo, punchLogRepo, employeeRepo, reconciler, cfg.Sync.Concurrency)
	pushReceiver := attendanceService.NewPushReceiver(deviceRepo, punchLogRepo)

	authSvc := authService.NewAuthService(userRepo, companyRepo, branchRepo, leaveTypeRepo, refreshTokenRepo, jwtService, googleService, tx)
	companySvc := companyService.NewCompanyService(companyRepo, fileStorage)
	masterSvc := master.NewMasterService(branchRepo, departmentRepo)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, branchRepo, departmentRepo, fileStorage)
	deviceSvc := deviceService.NewDeviceService(deviceRepo, branchRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, policyRepo, punchLogRepo, branchRepo, deviceRepo, reconciler, syncer)
	leaveSvc := leaveService.NewLeaveService(leaveTypeRepo, leaveApplicationRepo, employeeRepo, reconciler, tx)
	transferSvc := transferService.NewTransferService(transferRepo, employeeRepo, branchRepo, tx)
	reportSvc := reportService.NewReportService(reportRepo)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			UploadDir:      cfg.Storage.Dir,
		},
		jwtService,
		user.DefaultAuthorizer(),
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(jwtService, authSvc, cfg.App.FrontendURL),
			Company:    appHTTP.NewCompanyHandler(companySvc),
			Master:     appHTTP.NewMasterHandler(masterSvc),
			Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
			Device:     appHTTP.NewDeviceHandler(deviceSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Leave:      appHTTP.NewLeaveHandler(leaveSvc),
			Transfer:   appHTTP.NewTransferHandler(transferSvc),
			Report:     appHTTP.NewReportHandler(reportSvc),
			IClock:     appHTTP.NewIClockHandler(pushReceiver),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.NewScheduler()
	if cfg.Sync.Enabled {
		cron.NewAttendanceJobs(companyRepo, syncer, cfg.Sync.Lookback).RegisterJobs(scheduler, cfg.Sync.Interval)
		scheduler.Start(ctx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server started", "port", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		scheduler.Stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
