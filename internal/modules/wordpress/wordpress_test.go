package wordpress

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seoforge/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return &Service{httpClient: http.DefaultClient}
}

func testCreds(url string) Credentials {
	return Credentials{WordpressURL: url, Username: "editor", AppPassword: "xxxx yyyy zzzz"}
}

func TestCreateRemotePost(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "editor", user)
		assert.Equal(t, "xxxx yyyy zzzz", pass)

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 42, "link": "https://blog.example.com/?p=42"}`))
	}))
	defer srv.Close()

	post := &models.BlogPostModel{
		Title:           "Best SEO Tools",
		Content:         "<p>body</p>",
		MetaDescription: "A roundup of tools.",
		URLSlug:         "best-seo-tools",
	}

	result, err := testService().createRemotePost(testCreds(srv.URL+"/"), post)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.PostID)
	assert.Equal(t, "https://blog.example.com/?p=42", result.PostURL)

	assert.Equal(t, "Best SEO Tools", captured["title"])
	assert.Equal(t, "draft", captured["status"])
	assert.Equal(t, "best-seo-tools", captured["slug"])
	meta, ok := captured["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A roundup of tools.", meta["description"])
}

func TestCreateRemotePostErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"rest_cannot_create","message":"Sorry, you are not allowed."}`))
	}))
	defer srv.Close()

	_, err := testService().createRemotePost(testCreds(srv.URL), &models.BlogPostModel{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "rest_cannot_create")
}

func TestUploadMedia(t *testing.T) {
	image := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer image.Close()

	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/media", r.URL.Path)
		assert.Equal(t, `attachment; filename="hero.png"`, r.Header.Get("Content-Disposition"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(body))

		w.Write([]byte(`{"id": 7, "source_url": "https://blog.example.com/wp-content/uploads/hero.png"}`))
	}))
	defer wp.Close()

	result, err := testService().UploadMedia(testCreds(wp.URL), image.URL, "hero.png")
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.MediaID)
	assert.Equal(t, "https://blog.example.com/wp-content/uploads/hero.png", result.MediaURL)
}

func TestUploadMediaDefaultFileName(t *testing.T) {
	image := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpg-bytes"))
	}))
	defer image.Close()

	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `attachment; filename="blog-image.jpg"`, r.Header.Get("Content-Disposition"))
		w.Write([]byte(`{"id": 8, "source_url": "https://blog.example.com/u/blog-image.jpg"}`))
	}))
	defer wp.Close()

	result, err := testService().UploadMedia(testCreds(wp.URL), image.URL, "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), result.MediaID)
}

func TestUploadMediaMissingImageURL(t *testing.T) {
	_, err := testService().UploadMedia(testCreds("https://blog.example.com"), "   ", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imageUrl")
}

func TestUploadMediaDownloadFails(t *testing.T) {
	image := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer image.Close()

	_, err := testService().UploadMedia(testCreds("https://blog.example.com"), image.URL, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download")
}
