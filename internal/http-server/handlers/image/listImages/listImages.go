package listImages

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-chi/render"
	"imageBackend/internal/lib/api/response"
	"imageBackend/internal/lib/logger/sl"
	"imageBackend/internal/models"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const dateLayout = time.DateOnly

var ErrExactAndRange = errors.New("created_date cannot be combined with created_date__after or created_date__before")

type Response struct {
	response.Response
	Images []models.Image `json:"images"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageLister
type ImageLister interface {
	ListImages(ctx context.Context, filter models.ImageFilter) ([]models.Image, error)
}

// New lists images.
// @Summary      Lists images
// @Description  Images matching any of the given tags, created on or between the given dates (inclusive).
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        tags                  query     []string  false  "Tag names, any of"  collectionFormat(multi)
// @Param        created_date          query     string    false  "YYYY-MM-DD"
// @Param        created_date__after   query     string    false  "YYYY-MM-DD, inclusive"
// @Param        created_date__before  query     string    false  "YYYY-MM-DD, inclusive"
// @Param        random                query     bool      false  "Shuffle the result"
// @Param        limit                 query     int       false  "Page size"
// @Param        offset                query     int       false  "Rows to skip"
// @Success      200  {object}  listImages.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /images [get]
func New(log *slog.Logger, imageLister ImageLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.listImages.New"

		log := log.With(slog.String("op", op))

		filter, err := ParseImageFilter(r.URL.Query())
		if err != nil {
			log.Info("invalid filter", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		images, err := imageLister.ListImages(r.Context(), filter)
		if err != nil {
			log.Error("failed to list images", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list images"))
			return
		}

		if images == nil {
			images = []models.Image{}
		}

		log.Debug("images listed", slog.Int("count", len(images)))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Images:   images,
		})
	}
}

// ParseImageFilter reads the list query. An exact created_date excludes the
// range bounds.
func ParseImageFilter(q url.Values) (models.ImageFilter, error) {
	var (
		filter models.ImageFilter
		err    error
	)

	filter.Tags = append(filter.Tags, q["tags"]...)
	filter.Tags = append(filter.Tags, q["tags[]"]...)

	if filter.CreatedDate, err = parseDate(q, "created_date"); err != nil {
		return filter, err
	}
	if filter.CreatedAfter, err = parseDate(q, "created_date__after"); err != nil {
		return filter, err
	}
	if filter.CreatedBefore, err = parseDate(q, "created_date__before"); err != nil {
		return filter, err
	}
	if filter.CreatedDate != nil && (filter.CreatedAfter != nil || filter.CreatedBefore != nil) {
		return filter, ErrExactAndRange
	}

	if v := q.Get("random"); v != "" {
		if filter.Random, err = strconv.ParseBool(v); err != nil {
			return filter, fmt.Errorf("random must be a boolean")
		}
	}

	if filter.Limit, err = parseNonNegative(q, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = parseNonNegative(q, "offset"); err != nil {
		return filter, err
	}

	return filter, nil
}

func parseDate(q url.Values, key string) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD format", key)
	}

	return &t, nil
}

func parseNonNegative(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}

	return n, nil
}
