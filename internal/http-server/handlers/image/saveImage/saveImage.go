package saveImage

import (
	"context"
	"errors"
	"github.com/go-chi/render"
	"imageBackend/internal/ingest"
	"imageBackend/internal/lib/api/response"
	"imageBackend/internal/lib/apperr"
	"imageBackend/internal/lib/logger/sl"
	"imageBackend/internal/models"
	"imageBackend/internal/processor"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
)

const maxMemory = 32 << 20

type Response struct {
	response.Response
	Image *models.Image `json:"image,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageUploader
type ImageUploader interface {
	Upload(ctx context.Context, in ingest.UploadInput) (*models.Image, error)
}

// New uploads an image.
// @Summary      Uploads an image
// @Description  Stores an image with its title, description and tags. Images over the size budget are downscaled; file_ext converts to the given format.
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image        formData  file      true   "Image file"
// @Param        title        formData  string    true   "Title"
// @Param        description  formData  string    false  "Description"
// @Param        tags         formData  []string  false  "Tag names"  collectionFormat(multi)
// @Param        file_ext     query     string    false  "Output format"  Enums(jpg, png, webp)
// @Success      201  {object}  saveImage.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /images/upload [post]
func New(log *slog.Logger, uploader ImageUploader, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.saveImage.New"

		log := log.With(
			slog.String("op", op),
		)

		if maxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		}

		if err := r.ParseMultipartForm(maxMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				log.Warn("upload too large", slog.Int64("limit", tooLarge.Limit))
				render.Status(r, http.StatusRequestEntityTooLarge)
				render.JSON(w, r, response.Error("request body too large"))
				return
			}

			log.Error("failed to parse multipart form", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to parse form"))
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		in := ingest.UploadInput{
			Title:     r.FormValue("title"),
			Tags:      r.MultipartForm.Value["tags"],
			AliasTags: r.MultipartForm.Value["tags[]"],
			FileExt:   r.URL.Query().Get("file_ext"),
		}
		if desc, ok := r.MultipartForm.Value["description"]; ok && len(desc) > 0 {
			in.Description = &desc[0]
		}

		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			log.Error("failed to get file from request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to get file from request"))
			return
		default:
			defer func(file multipart.File) {
				_ = file.Close()
			}(file)

			data, err := io.ReadAll(file)
			if err != nil {
				log.Error("failed to read file", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("failed to read file"))
				return
			}

			in.File = &processor.RawUpload{
				Data:        data,
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
			}
		}

		image, err := uploader.Upload(r.Context(), in)
		if err != nil {
			var vErr *apperr.ValidationError
			if errors.As(err, &vErr) {
				log.Info("upload rejected", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				if vErrs, ok := ingest.ValidationErrors(err); ok {
					render.JSON(w, r, response.ValidationError(vErrs))
					return
				}
				render.JSON(w, r, response.Error(vErr.Reason))
				return
			}

			log.Error("failed to upload image", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to upload image"))
			return
		}

		log.Info("image uploaded successfully", slog.String("image_id", image.ID.String()))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: response.OK(),
			Image:    image,
		})
	}
}
