package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/rental-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/metrics"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type ObjectStoreMock struct{ mock.Mock }

func (m *ObjectStoreMock) Upload(ctx context.Context, token, bucket, path, contentType string, body io.Reader) error {
	return m.Called(ctx, token, bucket, path, contentType, body).Error(0)
}

type RecordStoreMock struct{ mock.Mock }

func (m *RecordStoreMock) Upsert(ctx context.Context, sess *session.Session, rec models.Record) error {
	return m.Called(ctx, sess, rec).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, msg any) error {
	return m.Called(ctx, routingKey, msg).Error(0)
}

var (
	u1    = &session.Session{UserID: "U1", AccessToken: "tok"}
	fixed = time.UnixMilli(1700000000123)
)

func newTestUploader(objects ObjectStore, records RecordStore, pub Publisher) *Uploader {
	u := NewUploader(objects, records, pub, metrics.New(prometheus.NewRegistry()), sl.Discard(), "secure-documents", 1024)
	u.now = func() time.Time { return fixed }
	u.suffix = func() string { return "abcd1234" }
	return u
}

func jpeg(name string) File {
	return File{Name: name, ContentType: "image/jpeg", Size: 4, Body: strings.NewReader("jpeg")}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in      string
		want    Slot
		wantErr bool
	}{
		{in: "front", want: Front},
		{in: "BACK", want: Back},
		{in: "side", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSlot(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSlot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	for _, s := range []Slot{Front, Back} {
		assert.NotPanics(t, func() { _ = s.Column() })
	}
	assert.Equal(t, "license_front_path", Front.Column())
	assert.Equal(t, "license_back_path", Back.Column())
}

func TestBuildPath(t *testing.T) {
	assert.Equal(t, "U1/license_front_1700000000123_abcd1234.jpg", BuildPath("U1", Front, fixed, "abcd1234", "jpg"))
}

func TestUpload_Success(t *testing.T) {
	const wantPath = "U1/license_front_1700000000123_abcd1234.jpg"
	objects := new(ObjectStoreMock)
	records := new(RecordStoreMock)
	pub := new(PublisherMock)

	objects.On("Upload", mock.Anything, "tok", "secure-documents", wantPath, "image/jpeg", mock.Anything).Return(nil).Once()
	records.On("Upsert", mock.Anything, u1, models.Record{"user_id": "U1", "license_front_path": wantPath}).Return(nil).Once()
	pub.On("Publish", mock.Anything, rabbitmq.KeyDocumentUploaded, mock.MatchedBy(func(ev models.DocumentEvent) bool {
		return ev.Path == wantPath && ev.Slot == "front"
	})).Return(nil).Once()

	path, err := newTestUploader(objects, records, pub).Upload(context.Background(), u1, Front, jpeg("front.jpg"))
	require.NoError(t, err)
	assert.Equal(t, wantPath, path)

	objects.AssertExpectations(t)
	records.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestUpload_BackDoesNotTouchFront(t *testing.T) {
	objects := new(ObjectStoreMock)
	records := new(RecordStoreMock)
	objects.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	records.On("Upsert", mock.Anything, u1, mock.MatchedBy(func(rec models.Record) bool {
		_, hasFront := rec["license_front_path"]
		return len(rec) == 2 && !hasFront && strings.HasPrefix(rec["license_back_path"].(string), "U1/license_back_")
	})).Return(nil).Once()

	_, err := newTestUploader(objects, records, rabbitmq.Nop{}).Upload(context.Background(), u1, Back,
		File{Name: "scan.PDF", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")})
	require.NoError(t, err)
	records.AssertExpectations(t)
}

func TestUpload_UpperCaseSlotIsNormalized(t *testing.T) {
	const wantPath = "U1/license_back_1700000000123_abcd1234.jpg"
	objects := new(ObjectStoreMock)
	records := new(RecordStoreMock)
	objects.On("Upload", mock.Anything, "tok", "secure-documents", wantPath, "image/jpeg", mock.Anything).Return(nil).Once()
	records.On("Upsert", mock.Anything, u1, models.Record{"user_id": "U1", "license_back_path": wantPath}).Return(nil).Once()

	path, err := newTestUploader(objects, records, rabbitmq.Nop{}).Upload(context.Background(), u1, Slot("BACK"), jpeg("b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, wantPath, path)
	objects.AssertExpectations(t)
	records.AssertExpectations(t)
}

func TestUpload_StoreFailureLeavesProfileUntouched(t *testing.T) {
	objects := new(ObjectStoreMock)
	records := new(RecordStoreMock)
	objects.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket unavailable")).Once()

	_, err := newTestUploader(objects, records, rabbitmq.Nop{}).Upload(context.Background(), u1, Front, jpeg("a.jpg"))
	assert.ErrorIs(t, err, ErrStoreFailed)
	records.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_RecordFailureOrphansObject(t *testing.T) {
	objects := new(ObjectStoreMock)
	records := new(RecordStoreMock)
	pub := new(PublisherMock)
	objects.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	records.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("row level security")).Once()
	pub.On("Publish", mock.Anything, rabbitmq.KeyDocumentOrphaned, mock.MatchedBy(func(ev models.DocumentEvent) bool {
		return ev.Reason != "" && strings.HasPrefix(ev.Path, "U1/")
	})).Return(errors.New("broker down")).Once()

	_, err := newTestUploader(objects, records, pub).Upload(context.Background(), u1, Front, jpeg("a.jpg"))
	assert.ErrorIs(t, err, ErrRecordFailed)
	pub.AssertExpectations(t)
}

func TestUpload_Validation(t *testing.T) {
	tests := []struct {
		name    string
		sess    *session.Session
		slot    Slot
		file    File
		wantErr error
	}{
		{name: "no session", sess: nil, slot: Front, file: jpeg("a.jpg"), wantErr: session.ErrNotAuthenticated},
		{name: "bad slot", sess: u1, slot: "side", file: jpeg("a.jpg"), wantErr: ErrInvalidSlot},
		{name: "empty file", sess: u1, slot: Front, file: File{Name: "a.jpg", ContentType: "image/jpeg"}, wantErr: ErrInvalidFile},
		{
			name: "too large", sess: u1, slot: Front,
			file:    File{Name: "a.jpg", ContentType: "image/jpeg", Size: 2048, Body: strings.NewReader("x")},
			wantErr: ErrInvalidFile,
		},
		{
			name: "wrong type", sess: u1, slot: Front,
			file:    File{Name: "a.exe", ContentType: "application/octet-stream", Size: 1, Body: strings.NewReader("x")},
			wantErr: ErrInvalidFile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects := new(ObjectStoreMock)
			_, err := newTestUploader(objects, new(RecordStoreMock), rabbitmq.Nop{}).
				Upload(context.Background(), tt.sess, tt.slot, tt.file)
			assert.ErrorIs(t, err, tt.wantErr)
			objects.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name, mediaType, want string
	}{
		{"front.JPG", "image/jpeg", "jpg"},
		{"scan", "application/pdf", "pdf"},
		{"noext", "image/jpeg", "jpg"},
		{"photo", "image/png", "png"},
		{"weird.j p g", "image/webp", "webp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extension(tt.name, tt.mediaType), tt.name)
	}
}
