package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/config"
	"github.com/manhour-hq/manhour-backend-go/internal/handler/http/middleware"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
)

type Handlers struct {
	Dashboard  DashboardHandler
	Allocation AllocationHandler
	Timesheet  TimesheetHandler
	Employee   EmployeeHandler
	Project    ProjectHandler
}

func NewRouter(cfg *config.Config, jwtService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "manhour-backend"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/company", h.Dashboard.GetCompanyDashboard)
				r.Get("/utilization", h.Dashboard.GetEmployeeUtilization)
				r.Get("/projects", h.Dashboard.GetProjectBurnRates)
				r.Get("/projects/{projectId}", h.Dashboard.GetProjectDashboard)
				r.Get("/employees/{employeeId}", h.Dashboard.GetEmployeeDashboard)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/refresh", h.Dashboard.RefreshAggregates)
				})
			})

			r.Route("/allocations", func(r chi.Router) {
				r.Get("/", h.Allocation.ListAllocations)
				r.Post("/", h.Allocation.CreateAllocation)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Allocation.GetAllocation)
					r.Put("/", h.Allocation.UpdateAllocation)
					r.Delete("/", h.Allocation.DeleteAllocation)
				})
			})

			r.Route("/timesheets", func(r chi.Router) {
				r.Get("/", h.Timesheet.ListTimesheets)
				r.Post("/", h.Timesheet.CreateTimesheet)
				r.Post("/bulk", h.Timesheet.BulkCreateTimesheets)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Timesheet.GetTimesheet)
					r.Put("/", h.Timesheet.UpdateTimesheet)
					r.Delete("/", h.Timesheet.DeleteTimesheet)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Post("/approval", h.Timesheet.ApproveTimesheet)
					})
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.ListEmployees)
				r.Get("/{id}", h.Employee.GetEmployee)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.Project.ListProjects)
				r.Get("/{id}", h.Project.GetProject)
			})
		})
	})

	return r
}
