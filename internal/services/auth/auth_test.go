package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/platform"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type IdentityMock struct{ mock.Mock }

func (m *IdentityMock) SignInWithPassword(ctx context.Context, email, pw string) (*models.AuthTokens, error) {
	args := m.Called(ctx, email, pw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthTokens), args.Error(1)
}

func (m *IdentityMock) SignUp(ctx context.Context, email, pw string, metadata map[string]any) (string, error) {
	args := m.Called(ctx, email, pw, metadata)
	return args.String(0), args.Error(1)
}

func (m *IdentityMock) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return m.Called(ctx, email, redirectTo).Error(0)
}

func (m *IdentityMock) UpdateUser(ctx context.Context, token, pw string) error {
	return m.Called(ctx, token, pw).Error(0)
}

func (m *IdentityMock) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

var invalidLogin = &platform.APIError{Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid login credentials"}

func validRegistration() models.Registration {
	return models.Registration{
		Email:       "jean@example.com",
		Password:    "Secret1!",
		FirstName:   "Jean",
		LastName:    "Dupont",
		Phone:       "06 12 34 56 78",
		CountryCode: "+33",
		DateOfBirth: "1990-05-01",
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		phone   string
		want    string
		wantErr bool
	}{
		{name: "french with leading zero", code: "+33", phone: "06 12 34 56 78", want: "+33612345678"},
		{name: "french without zero", code: "+33", phone: "612345678", want: "+33612345678"},
		{name: "french too short", code: "+33", phone: "0612", wantErr: true},
		{name: "french too long", code: "+33", phone: "6123456789", wantErr: true},
		{name: "other country keeps digits", code: "+41", phone: "079-123-45-67", want: "+410791234567"},
		{name: "no digits", code: "+41", phone: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.code, tt.phone)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(r *models.Registration)
		setupMock func(m *IdentityMock)
		wantID    string
		wantErr   error
	}{
		{
			name: "success",
			setupMock: func(m *IdentityMock) {
				m.On("EmailExists", mock.Anything, "jean@example.com").Return(false, nil).Once()
				m.On("SignUp", mock.Anything, "jean@example.com", "Secret1!", map[string]any{
					"first_name":    "Jean",
					"last_name":     "Dupont",
					"phone_number":  "+33612345678",
					"date_of_birth": "1990-05-01",
				}).Return("U1", nil).Once()
			},
			wantID: "U1",
		},
		{
			name:    "invalid email",
			modify:  func(r *models.Registration) { r.Email = "nope" },
			wantErr: ErrInvalid,
		},
		{
			name:    "bad phone",
			modify:  func(r *models.Registration) { r.Phone = "0612" },
			wantErr: ErrInvalidPhone,
		},
		{
			name:    "weak password",
			modify:  func(r *models.Registration) { r.Password = "password" },
			wantErr: ErrWeakPassword,
		},
		{
			name: "email taken",
			setupMock: func(m *IdentityMock) {
				m.On("EmailExists", mock.Anything, "jean@example.com").Return(true, nil).Once()
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "email check failure",
			setupMock: func(m *IdentityMock) {
				m.On("EmailExists", mock.Anything, "jean@example.com").Return(false, errors.New("timeout")).Once()
			},
			wantErr: ErrProviderFailed,
		},
		{
			name: "provider password rule",
			setupMock: func(m *IdentityMock) {
				m.On("EmailExists", mock.Anything, "jean@example.com").Return(false, nil).Once()
				m.On("SignUp", mock.Anything, "jean@example.com", "Secret1!", mock.Anything).
					Return("", &platform.APIError{Status: 422, Message: "Password should contain a symbol"}).Once()
			},
			wantErr: ErrWeakPassword,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := new(IdentityMock)
			if tt.setupMock != nil {
				tt.setupMock(identity)
			}
			reg := validRegistration()
			if tt.modify != nil {
				tt.modify(&reg)
			}
			svc := New(identity, sl.Discard(), "https://portal.example.com")

			id, err := svc.Register(context.Background(), reg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			identity.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	creds := models.Credentials{Email: "jean@example.com", Password: "Secret1!"}
	tokens := &models.AuthTokens{AccessToken: "a", RefreshToken: "r", UserID: "U1"}

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "success"},
		{name: "invalid login", err: invalidLogin, wantErr: ErrInvalidCredentials},
		{name: "provider down", err: &platform.APIError{Status: 503, Message: "unavailable"}, wantErr: ErrProviderFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := new(IdentityMock)
			if tt.err != nil {
				identity.On("SignInWithPassword", mock.Anything, creds.Email, creds.Password).Return(nil, tt.err).Once()
			} else {
				identity.On("SignInWithPassword", mock.Anything, creds.Email, creds.Password).Return(tokens, nil).Once()
			}
			svc := New(identity, sl.Discard(), "")

			got, err := svc.Login(context.Background(), creds)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tokens, got)
			}
			identity.AssertExpectations(t)
		})
	}
}

func TestForgotPassword(t *testing.T) {
	identity := new(IdentityMock)
	identity.On("ResetPasswordForEmail", mock.Anything, "jean@example.com",
		"https://portal.example.com/update-password").Return(nil).Once()
	svc := New(identity, sl.Discard(), "https://portal.example.com/")

	require.NoError(t, svc.ForgotPassword(context.Background(), "jean@example.com"))
	assert.ErrorIs(t, svc.ForgotPassword(context.Background(), "not-an-email"), ErrInvalid)
	identity.AssertExpectations(t)
}

func TestUpdatePassword(t *testing.T) {
	sess := &session.Session{UserID: "U1", Email: "jean@example.com", AccessToken: "tok"}
	identity := new(IdentityMock)
	identity.On("UpdateUser", mock.Anything, "tok", "NewSecret2?").Return(nil).Once()
	svc := New(identity, sl.Discard(), "")

	require.NoError(t, svc.UpdatePassword(context.Background(), sess, "NewSecret2?"))
	assert.ErrorIs(t, svc.UpdatePassword(context.Background(), sess, "weak"), ErrWeakPassword)
	assert.ErrorIs(t, svc.UpdatePassword(context.Background(), nil, "NewSecret2?"), session.ErrNotAuthenticated)
	identity.AssertExpectations(t)
}

func TestChangePassword(t *testing.T) {
	sess := &session.Session{UserID: "U1", Email: "jean@example.com", AccessToken: "tok"}

	tests := []struct {
		name      string
		current   string
		next      string
		confirm   string
		setupMock func(m *IdentityMock)
		wantErr   error
	}{
		{
			name: "success", current: "Secret1!", next: "NewSecret2?", confirm: "NewSecret2?",
			setupMock: func(m *IdentityMock) {
				m.On("SignInWithPassword", mock.Anything, "jean@example.com", "Secret1!").
					Return(&models.AuthTokens{AccessToken: "fresh"}, nil).Once()
				m.On("UpdateUser", mock.Anything, "tok", "NewSecret2?").Return(nil).Once()
			},
		},
		{name: "mismatch", current: "Secret1!", next: "NewSecret2?", confirm: "NewSecret3?", wantErr: ErrPasswordMismatch},
		{name: "weak", current: "Secret1!", next: "short", confirm: "short", wantErr: ErrWeakPassword},
		{
			name: "wrong current", current: "Bad1!bad", next: "NewSecret2?", confirm: "NewSecret2?",
			setupMock: func(m *IdentityMock) {
				m.On("SignInWithPassword", mock.Anything, "jean@example.com", "Bad1!bad").Return(nil, invalidLogin).Once()
			},
			wantErr: ErrWrongPassword,
		},
		{
			name: "update failure", current: "Secret1!", next: "NewSecret2?", confirm: "NewSecret2?",
			setupMock: func(m *IdentityMock) {
				m.On("SignInWithPassword", mock.Anything, "jean@example.com", "Secret1!").
					Return(&models.AuthTokens{}, nil).Once()
				m.On("UpdateUser", mock.Anything, "tok", "NewSecret2?").Return(errors.New("boom")).Once()
			},
			wantErr: ErrProviderFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := new(IdentityMock)
			if tt.setupMock != nil {
				tt.setupMock(identity)
			}
			svc := New(identity, sl.Discard(), "")

			err := svc.ChangePassword(context.Background(), sess, tt.current, tt.next, tt.confirm)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			identity.AssertExpectations(t)
		})
	}
}
