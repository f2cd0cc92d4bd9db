package forgot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/services/auth"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func TestForgotHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		email          string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{name: "mail sent", body: `{"email":"jane@example.com"}`, email: "jane@example.com", expectedStatus: http.StatusOK, expectedBody: `"status":"OK"`},
		{
			name: "provider down", body: `{"email":"jane@example.com"}`, email: "jane@example.com",
			err:            fmt.Errorf("auth.ForgotPassword: %w", auth.ErrProviderFailed),
			expectedStatus: http.StatusBadGateway,
		},
		{name: "bad email", body: `{"email":"jane"}`, expectedStatus: http.StatusUnprocessableEntity, expectedBody: "field Email must be a valid email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.email != "" {
				svc.On("ForgotPassword", mock.Anything, tt.email).Return(tt.err).Once()
			}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			New(sl.Discard(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
