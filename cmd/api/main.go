package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"tutor-central/config"
	"tutor-central/internal/redis"
	"tutor-central/internal/repository"
	"tutor-central/internal/resolver"
	"tutor-central/internal/server"
	"tutor-central/internal/services"
	"tutor-central/internal/storage"
	"tutor-central/pkg/database"
	"tutor-central/pkg/logger"
)

type repositories struct {
	accounts repository.AccountRepository
	chats    repository.ChatRepository
	messages repository.MessageRepository
	health   server.HealthFunc
}

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx := context.Background()

	repos, err := openRepositories(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	objects, err := openObjectStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open object store: %v", err)
	}

	var limiter *redis.RateLimiter
	if cfg.RateLimitEnabled {
		rc := redis.Initialize(redis.Config{Host: cfg.RedisHost, Port: cfg.RedisPort, Password: cfg.RedisPassword})
		if err := redis.Ping(ctx, rc); err != nil {
			log.Fatalf("Failed to reach redis: %v", err)
		}
		limiter = redis.NewRateLimiter(rc, redis.DefaultRateLimitConfig())
	}

	tokens := services.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	r := resolver.New(resolver.Services{
		Accounts: services.NewAccountService(repos.accounts, tokens, l),
		Chats:    services.NewChatService(repos.accounts, repos.chats, repos.messages, l),
		Messages: services.NewMessageService(repos.accounts, repos.chats, repos.messages),
		Uploads: services.NewUploadService(repos.accounts, objects, services.UploadConfig{
			MaxBytes:     cfg.UploadMaxBytes,
			ReadTimeout:  time.Duration(cfg.UploadReadTimeoutSec) * time.Second,
			StoreTimeout: time.Duration(cfg.UploadStoreTimeoutSec) * time.Second,
			Quality:      cfg.UploadWebPQuality,
		}, l),
		Tokens: tokens,
	}, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(r, limiter, repos.health)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
	database.Close()
}

func openRepositories(cfg *config.Config) (repositories, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := repository.NewMemoryStore()
		return repositories{
			accounts: store.Accounts(),
			chats:    store.Chats(),
			messages: store.Messages(),
		}, nil
	case config.StoreDriverPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return repositories{}, err
		}
		if err := repository.InitSchema(db); err != nil {
			return repositories{}, fmt.Errorf("apply schema: %w", err)
		}
		return repositories{
			accounts: repository.NewAccountRepository(db),
			chats:    repository.NewChatRepository(db),
			messages: repository.NewMessageRepository(db),
			health:   database.HealthCheck,
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	ttl := time.Duration(cfg.PresignTTLMin) * time.Minute
	switch cfg.ObjectStoreDriver {
	case config.ObjectStoreS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: ttl,
		})
	case config.ObjectStoreMinio:
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:   cfg.MinioEndpoint,
			AccessKey:  cfg.MinioAccessKey,
			SecretKey:  cfg.MinioSecretKey,
			Bucket:     cfg.MinioBucket,
			UseSSL:     cfg.MinioUseSSL,
			PublicBase: cfg.MinioPublicBase,
			PresignTTL: ttl,
		})
	case config.ObjectStoreMemory:
		return storage.NewMemoryStore(fmt.Sprintf("http://localhost:%s/objects", cfg.AppPort)), nil
	default:
		return nil, fmt.Errorf("unknown object store driver %q", cfg.ObjectStoreDriver)
	}
}
