package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/walruspass/walruspass/cmd/gateway/repository"
	"github.com/walruspass/walruspass/cmd/gateway/service"
	"github.com/walruspass/walruspass/common/bootstrap"
	rediscommon "github.com/walruspass/walruspass/common/redis"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components
	Redis      *rediscommon.Client
	RedisRaw   *redis.Client

	// Repositories
	ProfileRepo *repository.ProfileRepository
	VaultRepo   *repository.VaultRepository
	FileRepo    *repository.FileRepository
	NFTRepo     *repository.NFTRepository

	// Services
	ProfileService *service.ProfileService
	VaultService   *service.VaultService
	FileService    *service.FileService
	NFTService     *service.NFTService
	AuthService    *service.AuthService
	AvatarStore    *service.AvatarStore
}

// NewContainer initializes all services and repositories once
func NewContainer(ctx context.Context, components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Create Redis client (raw)
	redisRaw := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Wrap with common redis client for instrumentation and common operations
	redisClient := rediscommon.NewClient(redisRaw, components.Logger)

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(components.DB.Pool)
	vaultRepo := repository.NewVaultRepository(components.DB.Pool)
	fileRepo := repository.NewFileRepository(components.DB.Pool)
	nftRepo := repository.NewNFTRepository(components.DB.Pool)

	// Avatar storage is optional; profile updates without it still work
	var avatarStore *service.AvatarStore
	var avatarUploader service.AvatarUploader
	if cfg.ObjectStore.AccessKey != "" {
		store, err := service.NewAvatarStore(ctx, cfg.ObjectStore, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create avatar store: %w", err)
		}
		avatarStore = store
		avatarUploader = store
	}

	// Initialize services (bottom-up: dependencies first)
	profileService := service.NewProfileService(profileRepo, avatarUploader, components.Logger)
	vaultService := service.NewVaultService(vaultRepo, redisClient, components.Logger)
	fileService := service.NewFileService(fileRepo, vaultRepo, redisClient, components.Logger)
	nftService := service.NewNFTService(nftRepo, fileRepo, components.Logger)
	authService := service.NewAuthService(cfg.Auth, profileRepo, components.Logger)

	return &Container{
		Components:     components,
		Redis:          redisClient,
		RedisRaw:       redisRaw,
		ProfileRepo:    profileRepo,
		VaultRepo:      vaultRepo,
		FileRepo:       fileRepo,
		NFTRepo:        nftRepo,
		ProfileService: profileService,
		VaultService:   vaultService,
		FileService:    fileService,
		NFTService:     nftService,
		AuthService:    authService,
		AvatarStore:    avatarStore,
	}, nil
}
