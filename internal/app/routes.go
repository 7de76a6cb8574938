package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seoforge/core/internal/middleware"
	"github.com/seoforge/core/internal/modules/ai"
	"github.com/seoforge/core/internal/modules/configs"
	"github.com/seoforge/core/internal/modules/crontask"
	"github.com/seoforge/core/internal/modules/draft"
	"github.com/seoforge/core/internal/modules/export"
	"github.com/seoforge/core/internal/modules/post"
	"github.com/seoforge/core/internal/modules/profile"
	"github.com/seoforge/core/internal/modules/wordpress"
	pkgredis "github.com/seoforge/core/internal/pkg/redis"
	"github.com/seoforge/core/internal/pkg/response"
	"github.com/seoforge/core/internal/pkg/taskqueue"
	"github.com/seoforge/core/internal/pkg/webhook"
)

const defaultAutosaveQuiet = 2000 * time.Millisecond

func (a *App) registerRoutes(rc *pkgredis.Client, taskSvc *taskqueue.Service) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "seoforge-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/seoforge/core",
	}

	apiPrefix := "/api/v1"

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(db))
	api.Use(middleware.RateLimit(rc.Raw(), a.logger))
	api.Use(middleware.Idempotence(rc.Raw()))
	api.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL:             15 * time.Second,
		EnableCDNHeader: true,
		Disable:         a.cfg.IsDev(),
		SkipPaths:       httpCacheSkipPaths(apiPrefix),
	}))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(a.cfgStartTime()).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	// Shared services
	cfgSvc := configs.NewService(db)
	profileSvc := profile.NewService(db)

	// Outbound webhook notifications respect the stored webhook options at
	// send time.
	notifier := webhook.New(func() (bool, time.Duration, time.Duration) {
		cfg, err := cfgSvc.Get()
		if err != nil {
			return false, 0, 0
		}
		return cfg.Webhook.Enable,
			time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second,
			time.Duration(cfg.Webhook.ThrottleSeconds) * time.Second
	})

	api.GET("/clean_cache", authMW, func(c *gin.Context) {
		cfgSvc.Invalidate()
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"ok": true, "deleted": deleted})
	})

	// Config & profiles
	configs.NewHandler(cfgSvc).RegisterRoutes(api, authMW)
	profile.NewHandler(profileSvc).RegisterRoutes(api, authMW)

	// Draft autosave. Quiet period comes from the stored config; the enabled
	// flag from the user's profile, both resolved at session start. Failed
	// settles fan out to the user's webhook, throttled since the debouncer
	// retries every quiet period while the store is down.
	draftSvc := draft.NewService(db)
	onAutosaveFailure := func(userID string, err error) {
		p, perr := profileSvc.Get(userID)
		if perr != nil || p == nil || p.WebhookURL == "" {
			return
		}
		notifier.NotifyThrottled(context.Background(), p.WebhookURL, "draft.autosave_failed", gin.H{
			"userId": userID,
			"error":  err.Error(),
		})
	}
	a.drafts = draft.NewRegistry(draftSvc, a.logger.Named("Autosave"), onAutosaveFailure)
	settings := func(userID string) (time.Duration, bool) {
		quiet := defaultAutosaveQuiet
		if cfg, err := cfgSvc.Get(); err == nil && cfg.Autosave.QuietMS > 0 {
			quiet = time.Duration(cfg.Autosave.QuietMS) * time.Millisecond
		}
		return quiet, profileSvc.AutosaveEnabled(userID)
	}
	draft.NewHandler(draftSvc, a.drafts, settings).RegisterRoutes(api, authMW)

	// Generation wizard
	ai.NewHandler(ai.NewService(cfgSvc, taskSvc)).RegisterRoutes(api, authMW)

	// Posts, publishing, export
	postSvc := post.NewService(db, notifier, a.logger.Named("PostService"))
	post.NewHandler(postSvc).RegisterRoutes(api, authMW)
	wordpress.NewHandler(wordpress.NewService(db)).RegisterRoutes(api, authMW)
	export.NewHandler(export.NewService(db, cfgSvc, a.cfg.ExportDir())).RegisterRoutes(api, authMW)

	// Cron & task queue admin
	crontask.NewHandler(a.sched, taskSvc).RegisterRoutes(api, authMW)
}

func httpCacheSkipPaths(apiPrefix string) []string {
	p := strings.TrimSuffix(strings.TrimSpace(apiPrefix), "/")
	if p == "" {
		p = "/api/v1"
	}
	return []string{
		p + "/uptime",
		p + "/clean_cache",
		p + "/drafts*",
		p + "/ai/*",
		p + "/posts*",
		p + "/cron*",
	}
}
