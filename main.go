package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/cache"
	"social-scheduler/infrastructure/clients/linkedin"
	"social-scheduler/infrastructure/clients/media"
	"social-scheduler/infrastructure/clients/scheduler"
	"social-scheduler/infrastructure/clients/twitter"
	youtubeclient "social-scheduler/infrastructure/clients/youtube"
	"social-scheduler/infrastructure/configuration"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/infrastructure/oauth"
	"social-scheduler/infrastructure/persistence"
	"social-scheduler/infrastructure/pubsub"
	"social-scheduler/infrastructure/realtime"
	"social-scheduler/infrastructure/servicebus"
	"social-scheduler/infrastructure/storage"
	"social-scheduler/infrastructure/webhook"
	httpHandler "social-scheduler/interfaces/http"
	"social-scheduler/server"
	"social-scheduler/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("panic", err).Error("Recovered from panic")
	}
}

func main() {
	defer recoverPanic()

	if keys := configuration.LoadEnvFromFile("config.env", ".env"); len(keys) > 0 {
		logger.GetLogger().WithField("keys", len(keys)).Info("Loaded environment from file")
		configuration.Reload()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	db, dialect, tokenRepo, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot initiate the primary database")
		os.Exit(1)
	}
	defer db.Close()
	itemRepo := persistence.NewScheduledItemRepository(db, dialect)
	logger.GetLogger().WithField("vendor", dialect.Name).Info("Database connected.")

	var videoMirror repository.IYouTubeVideo
	gormDB, err := persistence.NewRepositories()
	switch {
	case errors.Is(err, persistence.ErrMySQLDisabled):
		logger.GetLogger().Info("MySQL not configured - YouTube mirror disabled")
	case err != nil:
		logger.GetLogger().WithField("error", err).Warn("MySQL unavailable - continuing without YouTube mirror")
	default:
		videoMirror = persistence.NewYouTubeVideoRepository(gormDB)
	}

	var audit repository.IPublishAudit
	mongoCfg := configuration.C.Database.Mongo
	mongoDb, err := persistence.NewMongoDb(mongoCfg.Host, mongoCfg.Port, mongoCfg.User, mongoCfg.Password, mongoCfg.Name)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not configured - continuing without publish audit")
	} else if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without publish audit")
		_ = mongoDb.Disconnect(context.Background())
	} else {
		logger.GetLogger().Info("MongoDB connected successfully")
		audit = persistence.NewPublishAuditRepository(mongoDb, mongoCfg.Name)
		defer mongoDb.Disconnect(context.Background())
	}

	var triggerLock repository.ITriggerLock = cache.NewLocalTriggerLock()
	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis unavailable - trigger lock is process local")
	} else {
		logger.GetLogger().Info("Redis client initialized successfully.")
		triggerLock = cache.NewTriggerLock(redisClient)
		defer redisClient.Close()
	}

	hub := realtime.NewStatusHub()
	notifiers := []repository.IStatusNotifier{hub}

	if configuration.C.Pubsub.ProjectID != "" && configuration.C.Pubsub.TopicID != "" {
		pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
		} else {
			publisher := pubsub.NewStatusPublisher(pubSubClient, configuration.C.Pubsub.TopicID)
			if err := publisher.EnsureTopic(ctx); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Pub/Sub topic unavailable - status events not published")
			} else {
				notifiers = append(notifiers, publisher)
			}
			defer func() {
				publisher.Stop()
				_ = pubSubClient.Close()
			}()
		}
	}

	if configuration.C.ServiceBus.Namespace != "" && configuration.C.ServiceBus.QueueName != "" {
		azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus features")
		} else {
			publisher := servicebus.NewStatusPublisher(azServiceBusClient, configuration.C.ServiceBus.QueueName)
			notifiers = append(notifiers, publisher)
			defer func() {
				closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer closeCancel()
				publisher.Close(closeCtx)
			}()
		}
	}

	fetcher := media.NewFetcher(configuration.C.Media.MaxBytes, time.Duration(configuration.C.Media.TimeoutSeconds)*time.Second)
	if configuration.C.Media.Archive.Bucket != "" {
		archive, err := storage.NewS3MediaArchive(ctx, configuration.C.Media.Archive)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Media archive unavailable - fetched media is not archived")
		} else {
			fetcher = fetcher.WithArchive(archive)
		}
	}

	schedCfg := configuration.C.Scheduler
	dispatcher := scheduler.NewClient(scheduler.Config{
		BaseURL: schedCfg.BaseURL,
		Token:   schedCfg.Token,
		Timeout: schedCfg.Timeout(),
	})

	platforms := configuration.C.Platforms
	youtubeOAuth := configuration.C.OAuth.YouTube
	publishers := usecase.Publishers{
		Twitter: twitter.NewClient(twitter.Config{
			BaseURL:           platforms.TwitterBaseURL,
			RequestsPerMinute: platforms.RequestsPerMinute,
		}),
		LinkedIn: linkedin.NewClient(linkedin.Config{
			BaseURL:           platforms.LinkedInBaseURL,
			Version:           platforms.LinkedInVersion,
			RequestsPerMinute: platforms.RequestsPerMinute,
		}),
		YouTube: youtubeclient.NewYouTubeClient(&youtubeclient.Config{
			ClientID:     youtubeOAuth.ClientID,
			ClientSecret: youtubeOAuth.ClientSecret,
			RedirectURL:  youtubeOAuth.RedirectURI,
			TokenURL:     youtubeOAuth.TokenURL,
		}, videoMirror),
	}

	refresher := oauth.NewRefresher(tokenRepo, configuration.C.OAuth)
	verifier := webhook.NewVerifier(schedCfg.CurrentSigningKey, schedCfg.NextSigningKey, schedCfg.Issuer)

	publishUsecase := usecase.NewPublishUsecase(itemRepo, refresher, dispatcher, fetcher, publishers, schedCfg.StaleWindow()).
		WithTriggerLock(triggerLock).
		WithNotifiers(notifiers...)
	scheduleUsecase := usecase.NewScheduleUsecase(itemRepo, dispatcher, schedCfg.CallbackBaseURL).
		WithNotifiers(notifiers...)
	if audit != nil {
		publishUsecase = publishUsecase.WithAudit(audit)
		scheduleUsecase = scheduleUsecase.WithAudit(audit)
	}
	if videoMirror != nil {
		scheduleUsecase = scheduleUsecase.WithVideos(videoMirror)
	}

	scheduleHandler := httpHandler.NewScheduleHandler(scheduleUsecase)
	webhookHandler := httpHandler.NewWebhookHandler(verifier, publishUsecase, schedCfg.CallbackBaseURL)

	app := configuration.C.App
	router := server.InitiateRouter(server.RouterConfig{
		SecretKey:      app.SecretKey,
		AllowedOrigins: app.AllowedOrigins,
	}, scheduleHandler, webhookHandler, hub.Serve)

	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", app.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateDatabase opens the primary store for the configured vendor, applies the schema and
// returns the matching credential store.
func InitiateDatabase() (*sql.DB, persistence.Dialect, repository.IOAuthToken, error) {
	dialect, err := persistence.DialectFor(configuration.C.Database.Vendor)
	if err != nil {
		return nil, persistence.Dialect{}, nil, err
	}

	if dialect == persistence.SQLServer {
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return nil, dialect, nil, err
		}
		if err := persistence.EnsureSchemaMSSQL(db); err != nil {
			_ = db.Close()
			return nil, dialect, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return db, dialect, persistence.NewOAuthTokenRepositoryMSSQL(db), nil
	}

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		return nil, dialect, nil, err
	}
	if err := persistence.EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, dialect, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, dialect, persistence.NewOAuthTokenRepository(db), nil
}
