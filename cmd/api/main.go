package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manhour-hq/manhour-backend-go/internal/config"
	"github.com/manhour-hq/manhour-backend-go/internal/db"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/tenant"
	appHTTP "github.com/manhour-hq/manhour-backend-go/internal/handler/http"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/cron"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/database"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
	"github.com/manhour-hq/manhour-backend-go/internal/repository/postgresql"
	allocationService "github.com/manhour-hq/manhour-backend-go/internal/service/allocation"
	dashboardService "github.com/manhour-hq/manhour-backend-go/internal/service/dashboard"
	employeeService "github.com/manhour-hq/manhour-backend-go/internal/service/employee"
	projectService "github.com/manhour-hq/manhour-backend-go/internal/service/project"
	timesheetService "github.com/manhour-hq/manhour-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	pool, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), int32(cfg.Database.PoolMin), int32(cfg.Database.PoolMax))
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool, cfg.App.MigrationsDir); err != nil {
		log.Fatal("Error applying migrations: ", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	tenantRepo := postgresql.NewTenantRepository(pool)
	employeeRepo := postgresql.NewEmployeeRepository(pool)
	projectRepo := postgresql.NewProjectRepository(pool)
	allocationRepo := postgresql.NewAllocationRepository(pool)
	timesheetRepo := postgresql.NewTimesheetRepository(pool)
	dashboardRepo := postgresql.NewDashboardRepository(pool)
	auditRepo := postgresql.NewAuditRepository(pool)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	defaults := tenant.Thresholds{
		Overload:  cfg.Defaults.OverloadThreshold,
		Underutil: cfg.Defaults.UnderutilThreshold,
	}

	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	projectSvc := projectService.NewProjectService(projectRepo)
	allocationSvc := allocationService.NewAllocationService(
		allocationRepo, employeeRepo, projectRepo, tenantRepo, auditRepo, defaults, logger)
	timesheetSvc := timesheetService.NewTimesheetService(
		pool, timesheetRepo, employeeRepo, projectRepo, auditRepo, logger)
	dashboardSvc := dashboardService.NewDashboardService(
		dashboardRepo, employeeRepo, projectRepo, timesheetRepo, tenantRepo, defaults, logger)

	scheduler := cron.NewScheduler()
	aggregateJobs := cron.NewAggregateJobs(dashboardSvc, time.Duration(cfg.App.RefreshMinutes)*time.Minute)
	aggregateJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg, jwtService, appHTTP.Handlers{
		Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
		Allocation: appHTTP.NewAllocationHandler(allocationSvc),
		Timesheet:  appHTTP.NewTimesheetHandler(timesheetSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Project:    appHTTP.NewProjectHandler(projectSvc),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("Server listening", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
