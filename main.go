package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"music-service/internal/config"
	"music-service/internal/db"
	"music-service/internal/handlers"
	"music-service/internal/middleware"
	"music-service/internal/observability"
	"music-service/internal/rabbitmq"
	"music-service/internal/repositories"
	"music-service/internal/services"
	"music-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	publisher := rabbitmq.NewNoopPublisher()
	if cfg.AMQPURL == "" {
		log.Printf("warning: AMQP_URL not set; event publishing disabled")
	} else {
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, "app.events")
		if err != nil {
			log.Printf("warning: failed to initialize RabbitMQ publisher: %v", err)
		} else {
			publisher = pub
		}
	}
	defer publisher.Close()

	auditPublisher := rabbitmq.NewNoopPublisher()
	if cfg.AMQPURL == "" {
		log.Printf("warning: AMQP_URL not set; audit publishing disabled")
	} else {
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.LogsExchange)
		if err != nil {
			log.Printf("warning: failed to initialize RabbitMQ audit publisher: %v", err)
		} else {
			auditPublisher = pub
		}
	}
	defer auditPublisher.Close()

	observability.InitMetrics(prometheus.DefaultRegisterer)

	userRepo := repositories.NewUserRepository(database)
	friendshipRepo := repositories.NewFriendshipRepository(database, publisher)
	messageRepo := repositories.NewMessageRepository(database)
	songRepo := repositories.NewSongRepository(database)
	playlistRepo := repositories.NewPlaylistRepository(database)
	favoriteRepo := repositories.NewFavoriteRepository(database)

	authService := services.NewAuthService(cfg.JWTSecret)
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, cfg.ServiceName, cfg.Environment)

	authHandler := handlers.NewAuthHandler(userRepo, authService)
	userHandler := handlers.NewUserHandler(userRepo)
	friendHandler := handlers.NewFriendHandler(friendshipRepo, userRepo, auditEmitter)
	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo)
	fileHandler := handlers.NewFileHandler(songRepo, userRepo, cfg.UploadsDir)
	playlistHandler := handlers.NewPlaylistHandler(playlistRepo, songRepo)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo, songRepo)

	limiter := middleware.NewRateLimiter(20, 40)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.Metrics(), limiter.Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/files/download/:songId", fileHandler.DownloadSong)
	r.GET("/files/profile-image/:userId", fileHandler.ProfileImage)

	auth := r.Group("", middleware.JWTAuth(cfg.JWTSecret))

	auth.GET("/friends", friendHandler.List)
	auth.GET("/friends/search", friendHandler.Search)
	auth.POST("/friends/request", friendHandler.SendRequest)
	auth.PUT("/friends/accept/:id", friendHandler.Accept)
	auth.DELETE("/friends/reject/:id", friendHandler.Reject)
	auth.DELETE("/friends/:id", friendHandler.Remove)

	auth.GET("/users/profile", userHandler.Profile)
	auth.PUT("/users/change-nick", userHandler.ChangeNick)
	auth.GET("/users/list", userHandler.List)
	auth.PUT("/users/toggleAdmin/:userId", userHandler.ToggleAdmin)
	auth.DELETE("/users/:userId", userHandler.Delete)

	auth.GET("/messages/:friendId", messageHandler.History)
	auth.GET("/messages/:friendId/new", messageHandler.New)
	auth.POST("/messages/send", messageHandler.Send)
	auth.PUT("/messages/read/:messageId", messageHandler.MarkRead)

	auth.POST("/files/upload", fileHandler.UploadSong)
	auth.POST("/files/profile-image", fileHandler.UploadProfileImage)

	auth.GET("/playlists", playlistHandler.List)
	auth.GET("/playlists/:playlistId", playlistHandler.Get)
	auth.POST("/playlists", playlistHandler.Create)
	auth.PUT("/playlists/:playlistId", playlistHandler.Rename)
	auth.DELETE("/playlists/:playlistId", playlistHandler.Delete)
	auth.POST("/playlists/:playlistId/songs", playlistHandler.AddSong)
	auth.DELETE("/playlists/:playlistId/songs/:songId", playlistHandler.RemoveSong)

	auth.GET("/favorites", favoriteHandler.List)
	auth.POST("/favorites", favoriteHandler.Add)
	auth.DELETE("/favorites/:songId", favoriteHandler.Remove)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
