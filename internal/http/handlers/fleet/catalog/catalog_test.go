package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/models"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Catalog(ctx context.Context) ([]models.Car, error) {
	args := m.Called(ctx)
	cars, _ := args.Get(0).([]models.Car)
	return cars, args.Error(1)
}

func TestCatalogHandler(t *testing.T) {
	tests := []struct {
		name           string
		cars           []models.Car
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "list",
			cars:           []models.Car{{ID: 1, Brand: "Ferrari", Model: "Roma"}},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{name: "store error", err: errors.New("db down"), expectedStatus: http.StatusInternalServerError, expectedBody: "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Catalog", mock.Anything).Return(tt.cars, tt.err).Once()
			w := httptest.NewRecorder()
			New(sl.Discard(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/fleet", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
