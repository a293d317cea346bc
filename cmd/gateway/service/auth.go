package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/walruspass/walruspass/cmd/gateway/auth"
	"github.com/walruspass/walruspass/common/apierror"
	"github.com/walruspass/walruspass/common/config"
	"github.com/walruspass/walruspass/common/logger"
)

// ProfileEnsurer creates the profile row on first sign-in
type ProfileEnsurer interface {
	EnsureExists(ctx context.Context, id string) error
}

// AuthService redeems provider callback codes for session tokens
type AuthService struct {
	http        *http.Client
	providerURL string
	secret      []byte
	ttl         time.Duration
	profiles    ProfileEnsurer
	log         *logger.Logger
}

func NewAuthService(cfg config.AuthConfig, profiles ProfileEnsurer, log *logger.Logger) *AuthService {
	return &AuthService{
		http:        &http.Client{Timeout: 15 * time.Second},
		providerURL: cfg.ProviderURL,
		secret:      []byte(cfg.JWTSecret),
		ttl:         cfg.TokenTTL,
		profiles:    profiles,
		log:         log,
	}
}

// ExchangeCode redeems a one-time code with the auth provider, ensures the
// user has a profile row, and returns a signed session token.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", apierror.New(apierror.KindValidation, "authentication code is required")
	}

	payload, _ := json.Marshal(map[string]string{"code": code})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.providerURL+"/token", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", apierror.Wrap(apierror.KindNetwork, "auth provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("auth code rejected", "status", resp.StatusCode)
		return "", apierror.New(apierror.KindUnauthorized, "authentication code rejected")
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apierror.Wrap(apierror.KindNetwork, "invalid auth provider response", err)
	}
	if body.UserID == "" {
		return "", apierror.New(apierror.KindUnauthorized, "auth provider returned no user")
	}

	if err := s.profiles.EnsureExists(ctx, body.UserID); err != nil {
		return "", apierror.FromDB(err, "profile not found")
	}

	token, err := auth.GenerateToken(s.secret, body.UserID, s.ttl)
	if err != nil {
		return "", apierror.Wrap(apierror.KindUnknown, "failed to issue session token", err)
	}

	s.log.Info("session issued", "user_id", body.UserID)
	return token, nil
}
