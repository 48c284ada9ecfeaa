package listTags

import (
	"context"
	"github.com/go-chi/render"
	"imageBackend/internal/lib/api/response"
	"imageBackend/internal/lib/logger/sl"
	"imageBackend/internal/models"
	"log/slog"
	"net/http"
)

type Response struct {
	response.Response
	Tags []models.Tag `json:"tags"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TagLister
type TagLister interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// New lists every known tag.
// @Summary      Lists tags
// @Tags         tags
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listTags.Response
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /images/tags [get]
func New(log *slog.Logger, tagLister TagLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tag.listTags.New"

		log := log.With(slog.String("op", op))

		tags, err := tagLister.ListTags(r.Context())
		if err != nil {
			log.Error("failed to list tags", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list tags"))
			return
		}

		if tags == nil {
			tags = []models.Tag{}
		}

		render.JSON(w, r, Response{
			Response: response.OK(),
			Tags:     tags,
		})
	}
}
