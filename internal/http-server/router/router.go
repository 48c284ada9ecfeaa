// Package router wires handlers and middleware into the HTTP API.
package router

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "imageBackend/docs"
	"imageBackend/internal/config"
	"imageBackend/internal/http-server/handlers/image/deleteImage"
	"imageBackend/internal/http-server/handlers/image/getImage"
	"imageBackend/internal/http-server/handlers/image/listImages"
	"imageBackend/internal/http-server/handlers/image/saveImage"
	"imageBackend/internal/http-server/handlers/image/updateImage"
	"imageBackend/internal/http-server/handlers/tag/listTags"
	"imageBackend/internal/http-server/middleware/auth"
	"imageBackend/internal/http-server/middleware/mwlogger"
	"imageBackend/internal/http-server/middleware/ratelimit"
)

type ImageReader interface {
	getImage.ImageGetter
	listImages.ImageLister
	listTags.TagLister
}

type ImageWriter interface {
	saveImage.ImageUploader
	updateImage.ImageUpdater
	deleteImage.ImageDeleter
}

type Deps struct {
	Reader         ImageReader
	Writer         ImageWriter
	Auth           config.Auth
	UploadLimiter  *ratelimit.Limiter
	MaxUploadBytes int64
	Gatherer       prometheus.Gatherer
	// MediaRoot, when set, is served under MediaPath.
	MediaRoot string
	MediaPath string
}

func New(log *slog.Logger, deps Deps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if deps.MediaRoot != "" {
		prefix := "/" + strings.Trim(deps.MediaPath, "/") + "/"
		router.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(deps.MediaRoot)})))
	}

	router.Route("/images", func(r chi.Router) {
		r.Use(auth.New(log, deps.Auth.Secret, deps.Auth.CookieName))

		r.With(auth.RequireGroup(auth.Readers...)).Get("/", listImages.New(log, deps.Reader))
		r.With(auth.RequireGroup(auth.Readers...)).Get("/tags", listTags.New(log, deps.Reader))
		r.With(
			ratelimit.New(log, deps.UploadLimiter),
			auth.RequireGroup(auth.Writers...),
		).Post("/upload", saveImage.New(log, deps.Writer, deps.MaxUploadBytes))

		r.With(auth.RequireGroup(auth.Readers...)).Get("/{id}", getImage.New(log, deps.Reader))
		r.With(auth.RequireGroup(auth.Writers...)).Patch("/{id}", updateImage.New(log, deps.Writer))
		r.With(auth.RequireGroup(auth.Admins...)).Delete("/{id}", deleteImage.New(log, deps.Writer))
	})

	return router
}

// filesOnly hides directories so the media tree cannot be listed.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}

	return file, nil
}
