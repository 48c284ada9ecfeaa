package router_test

import (
	"bytes"
	"image/color"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gavv/httpexpect/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"imageBackend/internal/blob/local"
	"imageBackend/internal/cleanup"
	"imageBackend/internal/config"
	"imageBackend/internal/http-server/middleware/ratelimit"
	"imageBackend/internal/http-server/router"
	"imageBackend/internal/ingest"
	"imageBackend/internal/lib/jwt"
	"imageBackend/internal/metrics"
	"imageBackend/internal/processor"
	"imageBackend/internal/storage/memory"
	"imageBackend/internal/tags"
)

const secret = "e2e-secret"

type server struct {
	url     string
	cleanup *cleanup.Inline
	store   *memory.Storage
}

func newServer(t *testing.T) *server {
	t.Helper()

	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	store := memory.New()
	blobs, err := local.New(t.TempDir(), "/media")
	require.NoError(t, err)

	c := cleanup.NewInline(log, blobs, m)

	svc := ingest.New(log, ingest.Deps{
		Normalizer: processor.NewNormalizer(processor.NewReducer(90, 2400, 1, 0), 5*1024*1024),
		Pool:       processor.NewPool(2),
		Tags:       tags.NewResolver(log, store),
		Images:     store,
		Blobs:      blobs,
		Cleanup:    c,
		Metrics:    m,
	})

	h := router.New(log, router.Deps{
		Reader:         store,
		Writer:         svc,
		Auth:           config.Auth{Secret: secret, CookieName: "access_token"},
		UploadLimiter:  ratelimit.NewLimiter(100, 100),
		MaxUploadBytes: 10 << 20,
		Gatherer:       reg,
		MediaRoot:      blobs.Root(),
		MediaPath:      "/media",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return &server{url: ts.URL, cleanup: c, store: store}
}

func token(t *testing.T, group string) string {
	t.Helper()

	s, err := jwt.NewToken("e2e-"+group, []string{group}, secret, time.Hour)
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 10, G: 120, B: 250, A: 255})))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string][]string, filename string, data []byte) ([]byte, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, writer.WriteField(k, v))
		}
	}
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body.Bytes(), writer.FormDataContentType()
}

func TestFullImageCycle(t *testing.T) {
	srv := newServer(t)
	e := httpexpect.Default(t, srv.url)

	user := "Bearer " + token(t, jwt.GroupUser)
	admin := "Bearer " + token(t, jwt.GroupAdmin)
	guest := "Bearer " + token(t, jwt.GroupGuest)

	data := pngBytes(t, 100, 100)
	body, contentType := multipartBody(t, map[string][]string{
		"title":  {"Test Image"},
		"tags[]": {"tag1", "tag2"},
	}, "test_image.png", data)

	img := e.POST("/images/upload").
		WithHeader("Authorization", user).
		WithHeader("Content-Type", contentType).
		WithBytes(body).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("image").Object()

	img.Value("title").String().IsEqual("Test Image")
	img.Value("width").Number().IsEqual(100)
	img.Value("height").Number().IsEqual(100)
	img.Value("tags").Array().Length().IsEqual(2)

	imageID := img.Value("id").String().Raw()
	imageURL := img.Value("image").String().Raw()

	t.Run("Blob Is Byte Identical", func(t *testing.T) {
		got := e.GET(imageURL).Expect().Status(http.StatusOK).Body().Raw()
		require.Equal(t, data, []byte(got))
	})

	t.Run("Get Image", func(t *testing.T) {
		e.GET("/images/"+imageID).
			WithCookie("access_token", token(t, jwt.GroupGuest)).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("image").Object().
			Value("id").String().IsEqual(imageID)
	})

	t.Run("List By Tag", func(t *testing.T) {
		e.GET("/images").
			WithHeader("Authorization", guest).
			WithQuery("tags", "tag2").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("images").Array().Length().IsEqual(1)

		e.GET("/images").
			WithHeader("Authorization", guest).
			WithQuery("tags", "missing").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("images").Array().IsEmpty()

		e.GET("/images").
			WithHeader("Authorization", guest).
			WithQuery("created_date", time.Now().UTC().Format(time.DateOnly)).
			WithQuery("created_date__after", "2020-01-01").
			Expect().
			Status(http.StatusBadRequest)
	})

	t.Run("List Tags", func(t *testing.T) {
		e.GET("/images/tags").
			WithHeader("Authorization", guest).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("tags").Array().Length().IsEqual(2)
	})

	t.Run("Update Image", func(t *testing.T) {
		e.PATCH("/images/"+imageID).
			WithHeader("Authorization", guest).
			WithJSON(map[string]any{"title": "Nope"}).
			Expect().
			Status(http.StatusForbidden)

		updated := e.PATCH("/images/"+imageID).
			WithHeader("Authorization", user).
			WithJSON(map[string]any{"title": "Renamed", "tags": []string{"tag3"}}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("image").Object()

		updated.Value("title").String().IsEqual("Renamed")
		updated.Value("width").Number().IsEqual(100)
		updated.Value("tags").Array().Length().IsEqual(1)
	})

	t.Run("Delete Image", func(t *testing.T) {
		e.DELETE("/images/"+imageID).
			WithHeader("Authorization", user).
			Expect().
			Status(http.StatusForbidden)

		e.DELETE("/images/"+imageID).
			WithHeader("Authorization", admin).
			Expect().
			Status(http.StatusNoContent)

		srv.cleanup.Wait()

		e.GET("/images/"+imageID).
			WithHeader("Authorization", guest).
			Expect().
			Status(http.StatusNotFound)

		e.GET(imageURL).Expect().Status(http.StatusNotFound)

		// Tags are independent of images.
		e.GET("/images/tags").
			WithHeader("Authorization", guest).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("tags").Array().Length().IsEqual(3)
	})
}

func TestUploadConvertsToWebp(t *testing.T) {
	srv := newServer(t)
	e := httpexpect.Default(t, srv.url)

	body, contentType := multipartBody(t, map[string][]string{"title": {"Converted"}}, "photo.png", pngBytes(t, 32, 32))

	img := e.POST("/images/upload").
		WithQuery("file_ext", "webp").
		WithHeader("Authorization", "Bearer "+token(t, jwt.GroupUser)).
		WithHeader("Content-Type", contentType).
		WithBytes(body).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("image").Object()

	img.Value("filename").String().HasSuffix(".webp")
	img.Value("content_type").String().IsEqual("image/webp")
}

func TestMediaDirectoriesAreNotListed(t *testing.T) {
	srv := newServer(t)
	e := httpexpect.Default(t, srv.url)

	body, contentType := multipartBody(t, map[string][]string{"title": {"Listed"}}, "photo.png", pngBytes(t, 8, 8))

	imageURL := e.POST("/images/upload").
		WithHeader("Authorization", "Bearer "+token(t, jwt.GroupUser)).
		WithHeader("Content-Type", contentType).
		WithBytes(body).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("image").Object().
		Value("image").String().Raw()

	e.GET(imageURL).Expect().Status(http.StatusOK)

	e.GET("/media/").Expect().Status(http.StatusNotFound)
	e.GET("/media/images/").Expect().Status(http.StatusNotFound)
	e.GET("/media/images").Expect().Status(http.StatusNotFound)
}

func TestUploadRejectsNonImage(t *testing.T) {
	srv := newServer(t)
	e := httpexpect.Default(t, srv.url)

	user := "Bearer " + token(t, jwt.GroupUser)

	body, contentType := multipartBody(t, map[string][]string{
		"title": {"Broken"},
		"tags":  {"never-created"},
	}, "test.jpg", []byte("this is not an image"))

	e.POST("/images/upload").
		WithHeader("Authorization", user).
		WithHeader("Content-Type", contentType).
		WithBytes(body).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().
		Value("error").String().IsEqual("invalid image")

	e.GET("/images").
		WithHeader("Authorization", user).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		Value("images").Array().IsEmpty()

	e.GET("/images/tags").
		WithHeader("Authorization", user).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		Value("tags").Array().IsEmpty()
}

func TestAuthAndOps(t *testing.T) {
	srv := newServer(t)
	e := httpexpect.Default(t, srv.url)

	e.GET("/images").Expect().Status(http.StatusUnauthorized)
	e.GET("/images").WithHeader("Authorization", "Bearer forged").Expect().Status(http.StatusUnauthorized)

	e.GET("/metrics").
		Expect().
		Status(http.StatusOK).
		Body().Contains("image_backend_blob_delete_failures_total")

	e.GET("/swagger/doc.json").
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		Value("paths").Object().ContainsKey("/images/upload")
}
