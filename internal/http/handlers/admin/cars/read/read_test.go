package read

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/services/fleet"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Get(ctx context.Context, sess *session.Session, id int) (models.Car, error) {
	args := m.Called(ctx, sess, id)
	return args.Get(0).(models.Car), args.Error(1)
}

func TestReadHandler(t *testing.T) {
	admin := &session.Session{UserID: "A1", Role: session.RoleAdmin}

	tests := []struct {
		name           string
		id             string
		car            models.Car
		err            error
		callService    bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "found", id: "3", callService: true,
			car:            models.Car{ID: 3, Brand: "Lamborghini", Model: "Huracan"},
			expectedStatus: http.StatusOK, expectedBody: `"brand":"Lamborghini"`,
		},
		{
			name: "missing", id: "4", callService: true,
			err:            fmt.Errorf("fleet.Get: %w", fleet.ErrNotFound),
			expectedStatus: http.StatusNotFound, expectedBody: "car not found",
		},
		{name: "bad id", id: "abc", expectedStatus: http.StatusBadRequest, expectedBody: "failed to decode id from url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("Get", mock.Anything, admin, mock.AnythingOfType("int")).Return(tt.car, tt.err).Once()
			}
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/cars/"+tt.id, nil)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(session.WithSession(ctx, admin))
			w := httptest.NewRecorder()

			New(sl.Discard(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
