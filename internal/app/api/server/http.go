package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/gymgate/docs"
	"github.com/fatflowers/gymgate/internal/app/api/handlers"
	mw "github.com/fatflowers/gymgate/internal/app/api/middleware"
	"github.com/fatflowers/gymgate/internal/app/service/audit"
	"github.com/fatflowers/gymgate/internal/app/service/broadcast"
	"github.com/fatflowers/gymgate/internal/app/service/checkin"
	"github.com/fatflowers/gymgate/internal/app/service/deviceauth"
	"github.com/fatflowers/gymgate/internal/app/service/membership"
	"github.com/fatflowers/gymgate/internal/app/service/visit"
	cfgpkg "github.com/fatflowers/gymgate/pkg/config"
	metrics "github.com/fatflowers/gymgate/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	coord *checkin.Coordinator,
	hub *broadcast.Hub,
	ledger *visit.Ledger,
	repo *membership.Repository,
	rec *audit.Recorder,
	devices *deviceauth.Service,
) {
	// Prometheus metrics on a side listener
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Device-authed gate surface: scan/checkout, stream, activity
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.DeviceAuthMiddleware(devices))
	handlers.RegisterCheckinRoutes(apiV1.Group("/checkin"), coord, log)
	handlers.RegisterStreamRoutes(apiV1.Group("/events"), hub, log)
	handlers.RegisterActivityRoutes(apiV1, ledger, log)

	// Admin plane: member/membership CRUD, device provisioning, audit review
	admin := r.Group("/api/v1/admin")
	admin.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterAdminRoutes(admin, repo, log)
	handlers.RegisterDeviceRoutes(admin, devices, log)
	handlers.RegisterAuditRoutes(admin, rec, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
