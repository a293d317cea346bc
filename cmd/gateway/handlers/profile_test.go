package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/models"
	"github.com/walruspass/walruspass/cmd/gateway/service"
	"github.com/walruspass/walruspass/common/bootstrap"
	"github.com/walruspass/walruspass/common/config"
	"github.com/walruspass/walruspass/common/logger"
)

type fakeProfileRepo struct {
	profiles map[string]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := r.profiles[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) EnsureExists(ctx context.Context, id string) error {
	if _, ok := r.profiles[id]; !ok {
		r.profiles[id] = &models.Profile{ID: id}
	}
	return nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, id string, displayName, avatarURL *string) (*models.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if displayName != nil {
		p.DisplayName = displayName
	}
	if avatarURL != nil {
		p.AvatarURL = avatarURL
	}
	return p, nil
}

type fakeUploader struct {
	url          string
	lastFilename string
	calls        int
}

func (f *fakeUploader) Upload(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, error) {
	f.calls++
	f.lastFilename = filename
	return f.url, nil
}

func newProfileTestHandler(repo *fakeProfileRepo, uploader service.AvatarUploader) *ProfileHandler {
	log := logger.New("error", "text")
	return NewProfileHandler(&container.Container{
		Components:     &bootstrap.Components{Config: &config.Config{}, Logger: log},
		ProfileService: service.NewProfileService(repo, uploader, log),
	})
}

func TestUpdateProfileReadsAvatarFileField(t *testing.T) {
	repo := newFakeProfileRepo()
	uploader := &fakeUploader{url: "https://cdn.example/avatars/user-1/a.png"}
	h := newProfileTestHandler(repo, uploader)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar_file", "a.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/profile/update", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user-1")

	require.NoError(t, h.UpdateProfile(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, "a.png", uploader.lastFilename)
	require.Contains(t, repo.profiles, "user-1")
	require.NotNil(t, repo.profiles["user-1"].AvatarURL)
	assert.Equal(t, uploader.url, *repo.profiles["user-1"].AvatarURL)
}

func TestUpdateProfileWithoutFieldsIsBadRequest(t *testing.T) {
	h := newProfileTestHandler(newFakeProfileRepo(), nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/profile/update", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user-1")

	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfileDisplayNameOnly(t *testing.T) {
	repo := newFakeProfileRepo()
	h := newProfileTestHandler(repo, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("display_name", "alice"))
	require.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/profile/update", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user-1")

	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.profiles["user-1"].DisplayName)
	assert.Equal(t, "alice", *repo.profiles["user-1"].DisplayName)
}
