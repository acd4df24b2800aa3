package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/office-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/office-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/office-backend-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/office-backend-go/internal/service/leave"
	reportService "github.com/cmlabs-hris/office-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.App.LogLevel),
	})))

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	transactor := postgresql.NewTransactor(db)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	clk := clock.Real()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, emailService, clk, cfg.Office)
	leaveSvc := leaveService.NewLeaveService(
		leaveRequestRepo,
		employeeRepo,
		transactor,
		emailService,
		clk,
		cfg.Office,
		cfg.Leave,
		cfg.App.FrontendURL,
	)
	reportSvc := reportService.NewReportService(reportRepo, attendanceRepo, clk, cfg.Office)

	scheduler := cron.NewScheduler(clk)
	cron.NewAttendanceJobs(attendanceSvc, cfg.Office).RegisterJobs(scheduler)
	scheduler.Start()

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewReportHandler(reportSvc),
		cfg.App,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}

	// handlers have returned, so no new emails can be queued
	attendanceSvc.Wait()
	leaveSvc.Wait()
	slog.Info("Pending notifications flushed")
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
