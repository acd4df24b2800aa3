package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	reportHandler ReportHandler,
	appConfig config.AppConfig,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(appConfig.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "office-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", appConfig.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{appConfig.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/check-in", attendanceHandler.CheckIn)
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/{id}/check-out", attendanceHandler.CheckOut)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/my", attendanceHandler.GetMyAttendance)
					r.Get("/my/all", attendanceHandler.GetMyHistory)
					r.Get("/today", attendanceHandler.GetToday)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/users/{userID}", attendanceHandler.GetByUser)
					r.Get("/departments/{departmentID}", attendanceHandler.GetByDepartment)
					r.Get("/report", attendanceHandler.GetReport)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceDelete)).Delete("/{id}", attendanceHandler.Delete)
				r.With(middleware.RequirePermission(user.PermissionAttendanceAutoCheckout)).Post("/auto-checkout", attendanceHandler.AutoCheckout)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveViewOwn))
					r.Get("/", leaveHandler.List)
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", leaveHandler.Submit)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", leaveHandler.Get)
						r.Patch("/", leaveHandler.Update)
						r.Post("/cancel", leaveHandler.Cancel)
						r.Post("/withdraw", leaveHandler.Withdraw)

						// Approvers only
						r.Group(func(r chi.Router) {
							r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
							r.Post("/approve", leaveHandler.Approve)
							r.Post("/reject", leaveHandler.Reject)
						})
					})
				})

				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Get("/approvals/pending", leaveHandler.PendingApprovals)

				r.Route("/balances", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveViewOwn))
					r.Get("/", leaveHandler.Balance)
					r.Get("/{employeeID}", leaveHandler.Balance)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/attendance", reportHandler.AttendanceSummary)
				r.Get("/leave", reportHandler.LeaveStatistics)
				r.Get("/dashboard", reportHandler.Dashboard)
				r.With(middleware.RequirePermission(user.PermissionReportsExport)).Get("/attendance/export", reportHandler.ExportAttendance)
			})
		})
	})

	return r
}
