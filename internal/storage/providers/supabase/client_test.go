package supabase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroapp/libro/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.Storage{
		SupabaseURL:        server.URL,
		SupabaseServiceKey: "service-key",
	})
	return client, server
}

func TestClient_Upload(t *testing.T) {
	var gotPath, gotAuth, gotContentType, gotBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	})

	err := client.Upload(context.Background(), "book-covers", "12_abc.jpg",
		strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/book-covers/12_abc.jpg", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "jpeg-bytes", gotBody)
}

func TestClient_Upload_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"bucket not found"}`))
	})

	err := client.Upload(context.Background(), "missing", "x.jpg",
		strings.NewReader("data"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestClient_Delete_IgnoresNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.Delete(context.Background(), "book-covers", "gone.jpg")
	assert.NoError(t, err)
}

func TestClient_PublicURL(t *testing.T) {
	client := NewClient(config.Storage{SupabaseURL: "https://proj.supabase.co"})

	url := client.PublicURL("id-cards", "7/12_abc.png")
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/id-cards/7/12_abc.png", url)
}
