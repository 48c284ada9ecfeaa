package deleteImage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"imageBackend/internal/http-server/handlers/image/deleteImage"
	"imageBackend/internal/http-server/handlers/image/deleteImage/mocks"
	"imageBackend/internal/storage"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDeleteImage(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))

	testUUID, _ := uuid.NewRandom()

	tests := []struct {
		name           string
		imageID        string
		mockErr        error
		callsDeleter   bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			imageID:        testUUID.String(),
			callsDeleter:   true,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "Invalid UUID",
			imageID:        "invalid-uuid",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid image ID"}`,
		},
		{
			name:           "Not Found",
			imageID:        testUUID.String(),
			mockErr:        fmt.Errorf("ingest.Delete: %w", storage.ErrImageNotFound),
			callsDeleter:   true,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"image not found"}`,
		},
		{
			name:           "Internal Error",
			imageID:        testUUID.String(),
			mockErr:        errors.New("db error"),
			callsDeleter:   true,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to delete image"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imageDeleterMock := mocks.NewImageDeleter(t)

			if tt.callsDeleter {
				imageDeleterMock.On("Delete", mock.Anything, testUUID).Return(tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/images/%s", tt.imageID), nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.imageID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rr := httptest.NewRecorder()

			handler := deleteImage.New(log, imageDeleterMock)
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedBody == "" {
				require.Empty(t, rr.Body.String())
				return
			}

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
