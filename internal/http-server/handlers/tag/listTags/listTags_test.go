package listTags_test

import (
	"bytes"
	"errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"imageBackend/internal/http-server/handlers/tag/listTags"
	"imageBackend/internal/http-server/handlers/tag/listTags/mocks"
	"imageBackend/internal/models"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTags(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))

	tests := []struct {
		name           string
		mockTags       []models.Tag
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			mockTags:       []models.Tag{{ID: 1, Name: "Test Tag", Slug: "test-tag"}, {ID: 2, Name: "test tag", Slug: "test-tag-2"}},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","tags":[{"name":"Test Tag","slug":"test-tag"},{"name":"test tag","slug":"test-tag-2"}]}`,
		},
		{
			name:           "Empty",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","tags":[]}`,
		},
		{
			name:           "Internal Error",
			mockErr:        errors.New("db error"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to list tags"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tagListerMock := mocks.NewTagLister(t)
			tagListerMock.On("ListTags", mock.Anything).Return(tt.mockTags, tt.mockErr).Once()

			req := httptest.NewRequest(http.MethodGet, "/images/tags", nil)
			rr := httptest.NewRecorder()

			listTags.New(log, tagListerMock).ServeHTTP(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)
			require.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}
