package app

import (
	"context"

	"authsync-service/internal/config"
	"authsync-service/internal/group"
	"authsync-service/internal/handler"
	"authsync-service/internal/ingest"
	"authsync-service/internal/logger"
	"authsync-service/internal/membersync"
	"authsync-service/internal/middleware"
	"authsync-service/internal/notify"
	"authsync-service/internal/provider/oauth"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	exchanger, err := oauth.New(
		cfg.ProviderClientID,
		cfg.ProviderClientSecret,
		cfg.ProviderRedirectURL,
		cfg.ProviderTokenURL,
		cfg.ProviderAPIBaseURL,
		cfg.ProviderCDNBaseURL,
	)
	if err != nil {
		return nil, nil, err
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.WebhookURL)
	}

	ingestService := ingest.NewService(exchanger, infra.CredStore, notifier)

	groupClient := group.NewHTTPClient(cfg.ProviderAPIBaseURL, cfg.GroupAPIToken)
	syncService := membersync.NewService(
		infra.CredStore,
		groupClient,
		cfg.SyncWorkers,
		func(processed, size int) {
			logger.Info("sync progress", map[string]any{
				"processed": processed,
				"size":      size,
			})
		},
	)

	authMiddleware := middleware.NewAuthMiddleware(cfg.AdminToken, infra.Whitelist)

	h := handler.NewHandler(
		ingestService,
		syncService,
		infra.CredStore,
		infra.Whitelist,
		authMiddleware,
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	h.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router, infra.cleanup, nil
}
