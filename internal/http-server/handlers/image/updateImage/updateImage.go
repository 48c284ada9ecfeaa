package updateImage

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"imageBackend/internal/ingest"
	"imageBackend/internal/lib/api/response"
	"imageBackend/internal/lib/apperr"
	"imageBackend/internal/lib/logger/sl"
	"imageBackend/internal/models"
	"imageBackend/internal/storage"
	"io"
	"log/slog"
	"net/http"
)

// Request is the PATCH body. Absent fields stay as they are; "tags" replaces
// the whole tag set.
type Request struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type Response struct {
	response.Response
	Image *models.Image `json:"image,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageUpdater
type ImageUpdater interface {
	Update(ctx context.Context, id uuid.UUID, in ingest.UpdateInput) (*models.Image, error)
}

// New updates title, description or tags of an image.
// @Summary      Updates an image
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Image ID"
// @Param        body  body      updateImage.Request    true  "Fields to change"
// @Success      200   {object}  updateImage.Response
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      500   {object}  response.Response
// @Router       /images/{id} [patch]
func New(log *slog.Logger, imageUpdater ImageUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.updateImage.New"

		log := log.With(slog.String("op", op))

		imageID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			log.Error("failed to parse image ID", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid image ID"))
			return
		}

		var req Request

		err = render.DecodeJSON(r.Body, &req)
		if errors.Is(err, io.EOF) {
			log.Error("request body is empty")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("empty request"))
			return
		}
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		image, err := imageUpdater.Update(r.Context(), imageID, ingest.UpdateInput{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
		})
		if err != nil {
			var vErr *apperr.ValidationError
			switch {
			case errors.As(err, &vErr):
				log.Info("update rejected", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				if vErrs, ok := ingest.ValidationErrors(err); ok {
					render.JSON(w, r, response.ValidationError(vErrs))
					return
				}
				render.JSON(w, r, response.Error(vErr.Reason))
			case errors.Is(err, storage.ErrImageNotFound):
				log.Warn("image not found", slog.String("image_id", imageID.String()))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("image not found"))
			default:
				log.Error("failed to update image", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to update image"))
			}
			return
		}

		log.Info("image updated", slog.String("image_id", imageID.String()))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Image:    image,
		})
	}
}
