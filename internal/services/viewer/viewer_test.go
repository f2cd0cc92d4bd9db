package viewer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type SignerMock struct{ mock.Mock }

func (m *SignerMock) SignedURL(ctx context.Context, token, bucket, path string, expiresIn int) (string, error) {
	args := m.Called(ctx, token, bucket, path, expiresIn)
	return args.String(0), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestSignedURL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	user := &session.Session{UserID: "U1", AccessToken: "tok"}
	admin := &session.Session{UserID: "A1", Role: session.RoleAdmin, AccessToken: "admin-tok"}

	tests := []struct {
		name      string
		sess      *session.Session
		path      *string
		setupMock func(m *SignerMock)
		wantURL   string
		wantNil   bool
		wantErr   error
	}{
		{name: "not authenticated", sess: nil, path: strPtr("U1/a.jpg"), wantErr: session.ErrNotAuthenticated},
		{name: "nil path", sess: user, path: nil, wantNil: true},
		{name: "empty path", sess: user, path: strPtr(""), wantNil: true},
		{name: "foreign path", sess: user, path: strPtr("U2/a.jpg"), wantErr: ErrForbidden},
		{name: "prefix lookalike", sess: user, path: strPtr("U10/a.jpg"), wantErr: ErrForbidden},
		{name: "parent traversal", sess: user, path: strPtr("U1/../U2/license_front_1.jpg"), wantErr: ErrForbidden},
		{name: "dot segment", sess: user, path: strPtr("U1/./a.jpg"), wantErr: ErrForbidden},
		{name: "double slash", sess: user, path: strPtr("U1//a.jpg"), wantErr: ErrForbidden},
		{name: "admin traversal", sess: admin, path: strPtr("U2/../../etc/a.jpg"), wantErr: ErrForbidden},
		{
			name: "own document",
			sess: user,
			path: strPtr("U1/license_front_1.jpg"),
			setupMock: func(m *SignerMock) {
				m.On("SignedURL", mock.Anything, "tok", "secure-documents", "U1/license_front_1.jpg", 3600).
					Return("https://signed/1", nil).Once()
			},
			wantURL: "https://signed/1",
		},
		{
			name: "admin reads any document",
			sess: admin,
			path: strPtr("U2/license_back_1.pdf"),
			setupMock: func(m *SignerMock) {
				m.On("SignedURL", mock.Anything, "admin-tok", "secure-documents", "U2/license_back_1.pdf", 3600).
					Return("https://signed/2", nil).Once()
			},
			wantURL: "https://signed/2",
		},
		{
			name: "signing failure",
			sess: user,
			path: strPtr("U1/a.jpg"),
			setupMock: func(m *SignerMock) {
				m.On("SignedURL", mock.Anything, "tok", "secure-documents", "U1/a.jpg", 3600).
					Return("", errors.New("object not found")).Once()
			},
			wantErr: ErrSignFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := new(SignerMock)
			if tt.setupMock != nil {
				tt.setupMock(signer)
			}
			v := New(signer, nil, sl.Discard(), "secure-documents", time.Hour)
			v.now = func() time.Time { return now }

			got, err := v.SignedURL(context.Background(), tt.sess, tt.path)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantNil:
				require.NoError(t, err)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.wantURL, got.URL)
				assert.Equal(t, now.Add(time.Hour), got.ExpiresAt)
			}
			signer.AssertExpectations(t)
		})
	}
}

func TestSignedURL_NotCached(t *testing.T) {
	signer := new(SignerMock)
	signer.On("SignedURL", mock.Anything, "tok", "secure-documents", "U1/a.jpg", 3600).Return("https://signed/x", nil).Twice()
	v := New(signer, nil, sl.Discard(), "secure-documents", time.Hour)
	sess := &session.Session{UserID: "U1", AccessToken: "tok"}

	for range 2 {
		_, err := v.SignedURL(context.Background(), sess, strPtr("U1/a.jpg"))
		require.NoError(t, err)
	}
	signer.AssertExpectations(t)
}
