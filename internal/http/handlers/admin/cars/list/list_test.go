package list

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/services/fleet"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) List(ctx context.Context, sess *session.Session) ([]models.Car, error) {
	args := m.Called(ctx, sess)
	cars, _ := args.Get(0).([]models.Car)
	return cars, args.Error(1)
}

func TestListHandler(t *testing.T) {
	admin := &session.Session{UserID: "A1", Role: session.RoleAdmin}
	tests := []struct {
		name           string
		cars           []models.Car
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{name: "two cars", cars: []models.Car{{ID: 1}, {ID: 2}}, expectedStatus: http.StatusOK, expectedBody: `"count":2`},
		{name: "forbidden", err: fmt.Errorf("fleet.List: %w", fleet.ErrForbidden), expectedStatus: http.StatusForbidden, expectedBody: "admin role required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("List", mock.Anything, admin).Return(tt.cars, tt.err).Once()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/cars", nil)
			req = req.WithContext(session.WithSession(req.Context(), admin))
			w := httptest.NewRecorder()

			New(sl.Discard(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
