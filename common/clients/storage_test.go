package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walruspass/walruspass/common/logger"
)

func newTestStorageClient(baseURL string) *StorageClient {
	log := logger.New("error", "text")
	return NewStorageClient(NewHTTPClient(http.DefaultClient, log), baseURL, "test-key", log)
}

func TestSetupEncryptionFirstTimeFallback(t *testing.T) {
	var calls []string
	encrypterAttempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))

		switch r.URL.Path {
		case "/encrypters":
			encrypterAttempts++
			if encrypterAttempts == 1 {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "No keys found"})
				return
			}
			w.WriteHeader(http.StatusOK)
		case "/me/setup-password":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestStorageClient(server.URL)

	err := c.SetupEncryption(context.Background(), "secret")
	require.NoError(t, err)

	// Failed attempt, password setup, then a successful retry
	assert.Equal(t, []string{"/encrypters", "/me/setup-password", "/encrypters"}, calls)
}

func TestSetupEncryptionOtherErrorDoesNotFallBack(t *testing.T) {
	var calls []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid API key"})
	}))
	defer server.Close()

	c := newTestStorageClient(server.URL)

	err := c.SetupEncryption(context.Background(), "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, []string{"/encrypters"}, calls)
}

func TestCreateVaultAlwaysEncrypted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vaults", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "my vault", body["name"])
		assert.Equal(t, true, body["encrypted"])

		_ = json.NewEncoder(w).Encode(Vault{ID: "vault-1", Name: "my vault", Encrypted: true})
	}))
	defer server.Close()

	c := newTestStorageClient(server.URL)

	vault, err := c.CreateVault(context.Background(), "my vault", "")
	require.NoError(t, err)
	assert.Equal(t, "vault-1", vault.ID)
}

func TestUploadFileReturnsUploadID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vaults/vault-1/uploads", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "pass.png", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]string{"uploadId": "upload-1"})
	}))
	defer server.Close()

	c := newTestStorageClient(server.URL)

	uploadID, err := c.UploadFile(context.Background(), "vault-1", "pass.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "upload-1", uploadID)
}

func TestListFilesNormalization(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		count     int
		nextToken string
	}{
		{"bare array", `[{"id":"f1"},{"id":"f2"}]`, 2, ""},
		{"items envelope", `{"items":[{"id":"f1"}],"nextToken":"tok"}`, 1, "tok"},
		{"data envelope", `{"data":[{"id":"f1"},{"id":"f2"},{"id":"f3"}]}`, 3, ""},
		{"empty array", `[]`, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "vault-1", r.URL.Query().Get("vaultId"))
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer server.Close()

			c := newTestStorageClient(server.URL)

			listing, err := c.ListFiles(context.Background(), ListFilesOptions{VaultID: "vault-1"})
			require.NoError(t, err)
			assert.Len(t, listing.Items, tt.count)
			assert.Equal(t, tt.nextToken, listing.NextToken)
		})
	}
}

func TestListFilesUnrecognizedShapeReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer server.Close()

	c := newTestStorageClient(server.URL)

	listing, err := c.ListFiles(context.Background(), ListFilesOptions{})
	require.NoError(t, err)
	assert.Empty(t, listing.Items)
}

func TestDownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/file-1/data", r.URL.Path)
		_, _ = w.Write([]byte("decrypted payload"))
	}))
	defer server.Close()

	c := newTestStorageClient(server.URL)

	data, err := c.DownloadFile(context.Background(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, "decrypted payload", string(data))
}

func TestErrorMessagesAreLowercased(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Access DENIED"})
	}))
	defer server.Close()

	c := newTestStorageClient(server.URL)

	_, err := c.GetFile(context.Background(), "file-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
