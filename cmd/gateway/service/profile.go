package service

import (
	"context"
	"io"

	"github.com/walruspass/walruspass/cmd/gateway/models"
	"github.com/walruspass/walruspass/common/apierror"
	"github.com/walruspass/walruspass/common/logger"
)

// ProfileRepo is the persistence surface the profile service needs
type ProfileRepo interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	EnsureExists(ctx context.Context, id string) error
	Update(ctx context.Context, id string, displayName, avatarURL *string) (*models.Profile, error)
}

// AvatarUploader stores an avatar and returns its public URL
type AvatarUploader interface {
	Upload(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, error)
}

// AvatarUpload carries an incoming avatar file from the handler
type AvatarUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

type ProfileService struct {
	repo    ProfileRepo
	avatars AvatarUploader
	log     *logger.Logger
}

func NewProfileService(repo ProfileRepo, avatars AvatarUploader, log *logger.Logger) *ProfileService {
	return &ProfileService{repo: repo, avatars: avatars, log: log}
}

// Get fetches a profile by user id
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, apierror.New(apierror.KindValidation, "user id is required")
	}

	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apierror.FromDB(err, "profile not found")
	}
	return p, nil
}

// Update overwrites display name and avatar for the authenticated user.
// No mutation happens when the caller is not authenticated.
func (s *ProfileService) Update(ctx context.Context, userID string, displayName *string, avatar *AvatarUpload) (*models.Profile, error) {
	if userID == "" {
		return nil, apierror.New(apierror.KindUnauthorized, "authentication required")
	}

	var avatarURL *string
	if avatar != nil {
		if s.avatars == nil {
			return nil, apierror.New(apierror.KindValidation, "avatar storage is not configured")
		}
		url, err := s.avatars.Upload(ctx, userID, avatar.Filename, avatar.ContentType, avatar.Data)
		if err != nil {
			return nil, apierror.Wrap(apierror.KindNetwork, "failed to store avatar", err)
		}
		avatarURL = &url
	}

	if err := s.repo.EnsureExists(ctx, userID); err != nil {
		return nil, apierror.FromDB(err, "profile not found")
	}

	p, err := s.repo.Update(ctx, userID, displayName, avatarURL)
	if err != nil {
		return nil, apierror.FromDB(err, "profile not found")
	}

	s.log.Info("profile updated", "user_id", userID, "avatar_changed", avatarURL != nil)
	return p, nil
}
