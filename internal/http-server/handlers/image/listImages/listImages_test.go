package listImages_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"imageBackend/internal/http-server/handlers/image/listImages"
	"imageBackend/internal/http-server/handlers/image/listImages/mocks"
	"imageBackend/internal/models"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func date(s string) *time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return &t
}

func TestParseImageFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    models.ImageFilter
		wantErr string
	}{
		{
			name:  "Empty",
			query: "",
			want:  models.ImageFilter{},
		},
		{
			name:  "Tags",
			query: "tags=cat&tags=dog&tags[]=bird",
			want:  models.ImageFilter{Tags: []string{"cat", "dog", "bird"}},
		},
		{
			name:  "Exact Date",
			query: "created_date=2023-06-01",
			want:  models.ImageFilter{CreatedDate: date("2023-06-01")},
		},
		{
			name:  "Range",
			query: "created_date__after=2023-06-01&created_date__before=2023-06-15",
			want:  models.ImageFilter{CreatedAfter: date("2023-06-01"), CreatedBefore: date("2023-06-15")},
		},
		{
			name:    "Exact And Range",
			query:   "created_date=2023-06-01&created_date__after=2023-06-01&created_date__before=2023-06-15",
			wantErr: listImages.ErrExactAndRange.Error(),
		},
		{
			name:    "Bad Date",
			query:   "created_date=01.06.2023",
			wantErr: "created_date must be a date in YYYY-MM-DD format",
		},
		{
			name:  "Paging And Random",
			query: "limit=2&offset=1&random=true",
			want:  models.ImageFilter{Limit: 2, Offset: 1, Random: true},
		},
		{
			name:    "Negative Limit",
			query:   "limit=-1",
			wantErr: "limit must be a non-negative integer",
		},
		{
			name:    "Bad Offset",
			query:   "offset=x",
			wantErr: "offset must be a non-negative integer",
		},
		{
			name:    "Bad Random",
			query:   "random=maybe",
			wantErr: "random must be a boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := listImages.ParseImageFilter(q)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestListImages(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))

	testUUID := uuid.New()
	created := time.Date(2023, 6, 1, 9, 30, 0, 0, time.UTC)

	image := models.Image{
		ID:          testUUID,
		Title:       "One",
		Filename:    "one.png",
		URL:         "/media/images/one.png",
		ContentType: "image/png",
		Size:        1,
		Width:       1,
		Height:      1,
		Tags:        []models.Tag{},
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	tests := []struct {
		name           string
		query          string
		callsLister    bool
		mockImages     []models.Image
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			query:          "?tags=cat&limit=1",
			callsLister:    true,
			mockImages:     []models.Image{image},
			expectedStatus: http.StatusOK,
			expectedBody: fmt.Sprintf(`{"status":"OK","images":[{"id":"%s","title":"One","description":null,"filename":"one.png","image":"/media/images/one.png","content_type":"image/png","size":1,"width":1,"height":1,"tags":[],"created_at":"%s","updated_at":"%s"}]}`,
				testUUID, created.Format(time.RFC3339Nano), created.Format(time.RFC3339Nano)),
		},
		{
			name:           "Nothing Found",
			query:          "",
			callsLister:    true,
			mockImages:     nil,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","images":[]}`,
		},
		{
			name:           "Bad Filter",
			query:          "?created_date=2023-06-01&created_date__before=2023-06-15",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   fmt.Sprintf(`{"status":"Error","error":%q}`, listImages.ErrExactAndRange.Error()),
		},
		{
			name:           "Internal Error",
			query:          "",
			callsLister:    true,
			mockErr:        errors.New("db error"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to list images"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imageListerMock := mocks.NewImageLister(t)

			if tt.callsLister {
				imageListerMock.On("ListImages", mock.Anything, mock.AnythingOfType("models.ImageFilter")).
					Return(tt.mockImages, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/images"+tt.query, nil)
			rr := httptest.NewRecorder()

			handler := listImages.New(log, imageListerMock)
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)

			actualBody := rr.Body.String()
			var actualMap, expectedMap map[string]interface{}
			err := json.Unmarshal([]byte(actualBody), &actualMap)
			require.NoError(t, err)
			err = json.Unmarshal([]byte(tt.expectedBody), &expectedMap)
			require.NoError(t, err)
			require.Equal(t, expectedMap, actualMap)
		})
	}
}
