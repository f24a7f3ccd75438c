package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/shrimpsizemoose/trekker/logger"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"coachdesk-backend/docs"
	"coachdesk-backend/internal/attendance"
	"coachdesk-backend/internal/campaign"
	"coachdesk-backend/internal/platform/auth"
	"coachdesk-backend/internal/platform/config"
	"coachdesk-backend/internal/platform/db"
	"coachdesk-backend/internal/platform/idempotency"
	"coachdesk-backend/internal/platform/mail"
	"coachdesk-backend/internal/platform/metrics"
	"coachdesk-backend/internal/report"
	"coachdesk-backend/internal/roster"
	"coachdesk-backend/internal/schedule"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("failed to load config: %v", err)
	}
	logger.Info.Printf("mode:%s version:%s", cfg.Mode, cfg.Version)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		logger.Error.Fatalf("failed to connect to database: %v", err)
	}
	defer conn.Close()
	logger.Info.Printf("connected to %s database %s", cfg.DB.Driver, cfg.DB.DBName)

	if err := db.Migrate(conn); err != nil {
		logger.Error.Fatalf("migration failed: %v", err)
	}

	// mark writes replay on Idempotency-Key when redis is available
	var writeMW []gin.HandlerFunc
	if cfg.Redis.Enabled {
		store, err := idempotency.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			logger.Error.Fatalf("invalid redis url: %v", err)
		}
		defer store.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.Ping(ctx); err != nil {
			logger.Error.Printf("redis not reachable, requests fail open until it is: %v", err)
		}
		cancel()
		writeMW = append(writeMW, idempotency.Middleware(store, cfg.Redis.IdempotencyTTL))
	}

	mailer := mail.New(cfg.Mail.ResendAPIKey, cfg.Mail.From)
	secret := []byte(cfg.Auth.JWTSecret)

	// services
	authSvc := auth.NewService(auth.NewStore(conn), secret, cfg.Auth.TokenTTL)
	rosterSvc := roster.NewService(conn)
	scheduleSvc := schedule.NewService(conn, rosterSvc, cfg.Schedule.Location())
	attendanceSvc := attendance.NewService(conn, scheduleSvc, rosterSvc)
	reportSvc := report.NewService(rosterSvc, scheduleSvc, attendanceSvc, mailer, cfg.Mail.AdminCC).
		WithLocation(cfg.Report.Location())
	campaignSvc := campaign.NewService(campaign.NewStore(conn), mailer)

	if cfg.Mode == config.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == config.ModeDev {
		// CORS is only needed while the dashboard runs on its own dev server
		origins := cfg.Server.AllowOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
			ExposeHeaders:    []string{"Content-Length", "Idempotent-Replayed"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	metrics.RegisterRoutes(r)

	docs.SwaggerInfo.Version = cfg.Version
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// /api/v2
	api := r.Group("/api/v2")
	authed := api.Group("", auth.RequireAuth(secret))
	coach := authed.Group("", auth.RequireStaff())
	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))

	auth.RegisterRoutes(api, admin, authSvc)
	roster.RegisterRoutes(authed, coach, admin, rosterSvc)
	schedule.RegisterRoutes(coach, admin, scheduleSvc)
	attendance.RegisterRoutes(coach, admin, attendanceSvc, writeMW...)
	report.RegisterRoutes(admin, reportSvc)
	campaign.RegisterRoutes(admin, campaignSvc)

	var c *cron.Cron
	if cfg.Report.Enabled {
		c = cron.New(cron.WithLocation(cfg.Report.Location()))
		if err := reportSvc.Schedule(c, cfg.Report.Schedule); err != nil {
			logger.Error.Fatalf("%v", err)
		}
		c.Start()
		logger.Info.Printf("weekly report scheduled at %q (%s)", cfg.Report.Schedule, cfg.Report.Timezone)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		var err error
		if cfg.Server.Certificate.Cert != "" && cfg.Server.Certificate.Key != "" {
			certFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Server.Certificate.Cert)
			keyFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Server.Certificate.Key)
			logger.Info.Printf("listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			logger.Info.Printf("listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Error.Fatalf("server stopped: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info.Println("shutting down...")

	if c != nil {
		<-c.Stop().Done()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error.Printf("shutdown: %v", err)
	}
}
