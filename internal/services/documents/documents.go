// Package documents загружает сканы водительского удостоверения клиента.
//
// Загрузка выполняется в две фазы: сначала объект пишется в приватный бакет
// под пространством имён пользователя, затем путь записывается в профиль.
// Если вторая фаза не удалась, объект остаётся сиротой: это фиксируется в
// логе, метрике и событии, но объект не удаляется.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/rental-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/metrics"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	schema "github.com/magabrotheeeer/rental-portal/internal/profile"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

var (
	// ErrInvalidSlot слот не front и не back.
	ErrInvalidSlot = errors.New("unknown document slot")
	// ErrInvalidFile файл пустой, слишком большой или неподдерживаемого типа.
	ErrInvalidFile = errors.New("invalid document file")
	// ErrStoreFailed объект не записан, профиль не менялся.
	ErrStoreFailed = errors.New("could not store document")
	// ErrRecordFailed объект записан, но путь не сохранён в профиле.
	ErrRecordFailed = errors.New("could not record document path")
)

// Slot сторона удостоверения.
type Slot string

const (
	Front Slot = "front"
	Back  Slot = "back"
)

// ParseSlot разбирает имя слота из URL.
func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(s)) {
	case Front:
		return Front, nil
	case Back:
		return Back, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
}

// FormName имя поля формы с путём документа слота.
func (s Slot) FormName() string {
	if s == Back {
		return "licenseBackPath"
	}
	return "licenseFrontPath"
}

// Column имя колонки профиля с путём документа слота.
func (s Slot) Column() string {
	col, ok := schema.Column(s.FormName())
	if !ok {
		panic("documents: no column for form field " + s.FormName())
	}
	return col
}

// File загружаемый файл.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectStore приватное объектное хранилище.
type ObjectStore interface {
	Upload(ctx context.Context, token, bucket, path, contentType string, body io.Reader) error
}

// RecordStore хранилище профилей; используется только точечный upsert.
type RecordStore interface {
	Upsert(ctx context.Context, sess *session.Session, rec models.Record) error
}

// Publisher публикует события о документах.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg any) error
}

// Uploader выполняет загрузку документов.
type Uploader struct {
	objects   ObjectStore
	records   RecordStore
	publisher Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
	bucket    string
	maxSize   int64

	now    func() time.Time
	suffix func() string
}

// NewUploader создаёт Uploader для бакета bucket с ограничением размера maxSize байт.
func NewUploader(objects ObjectStore, records RecordStore, publisher Publisher, m *metrics.Metrics,
	log *slog.Logger, bucket string, maxSize int64) *Uploader {
	if publisher == nil {
		publisher = rabbitmq.Nop{}
	}
	return &Uploader{
		objects:   objects,
		records:   records,
		publisher: publisher,
		metrics:   m,
		log:       log,
		bucket:    bucket,
		maxSize:   maxSize,
		now:       time.Now,
		suffix:    func() string { return uuid.NewString()[:8] },
	}
}

// BuildPath строит путь {userID}/license_{slot}_{unixMillis}_{suffix}.{ext}.
func BuildPath(userID string, slot Slot, at time.Time, suffix, ext string) string {
	return fmt.Sprintf("%s/license_%s_%d_%s.%s", userID, slot, at.UnixMilli(), suffix, ext)
}

// Upload загружает файл в слот slot и возвращает путь нового объекта.
func (u *Uploader) Upload(ctx context.Context, sess *session.Session, slot Slot, file File) (string, error) {
	const op = "services.documents.Upload"
	if err := session.Require(sess); err != nil {
		return "", err
	}
	raw := string(slot)
	slot, err := ParseSlot(raw)
	if err != nil {
		u.metrics.Upload(raw, metrics.ResultInvalid)
		return "", err
	}
	log := u.log.With(slog.String("op", op), slog.String("user_id", sess.UserID), slog.String("slot", string(slot)))

	ext, err := u.check(file)
	if err != nil {
		u.metrics.Upload(string(slot), metrics.ResultInvalid)
		return "", err
	}

	path := BuildPath(sess.UserID, slot, u.now(), u.suffix(), ext)

	// Фаза 1: объект.
	if err := u.objects.Upload(ctx, sess.AccessToken, u.bucket, path, file.ContentType, file.Body); err != nil {
		log.Error("failed to store document", slog.String("path", path), sl.Err(err))
		u.metrics.Upload(string(slot), metrics.ResultStoreFailed)
		return "", fmt.Errorf("%s: %w: %w", op, ErrStoreFailed, err)
	}

	// Фаза 2: ссылка в профиле.
	rec := models.Record{schema.KeyColumn: sess.UserID, slot.Column(): path}
	if err := u.records.Upsert(ctx, sess, rec); err != nil {
		log.Error("document stored but profile not updated, object orphaned", slog.String("path", path), sl.Err(err))
		u.metrics.Upload(string(slot), metrics.ResultRecordFailed)
		u.metrics.Orphan(string(slot))
		u.publish(ctx, log, rabbitmq.KeyDocumentOrphaned, models.DocumentEvent{
			UserID: sess.UserID, Slot: string(slot), Path: path, Reason: err.Error(), CreatedAt: u.now().UTC(),
		})
		return "", fmt.Errorf("%s: %w: %w", op, ErrRecordFailed, err)
	}

	log.Info("document uploaded", slog.String("path", path))
	u.metrics.Upload(string(slot), metrics.ResultOK)
	u.publish(ctx, log, rabbitmq.KeyDocumentUploaded, models.DocumentEvent{
		UserID: sess.UserID, Slot: string(slot), Path: path, CreatedAt: u.now().UTC(),
	})
	return path, nil
}

// check проверяет файл и возвращает расширение для пути.
func (u *Uploader) check(file File) (string, error) {
	if file.Body == nil || file.Size <= 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if u.maxSize > 0 && file.Size > u.maxSize {
		return "", fmt.Errorf("%w: file is larger than %d bytes", ErrInvalidFile, u.maxSize)
	}
	mediaType, _, err := mime.ParseMediaType(file.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: bad content type %q", ErrInvalidFile, file.ContentType)
	}
	if !strings.HasPrefix(mediaType, "image/") && mediaType != "application/pdf" {
		return "", fmt.Errorf("%w: unsupported content type %q", ErrInvalidFile, mediaType)
	}
	return extension(file.Name, mediaType), nil
}

func extension(name, mediaType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."); ext != "" && isAlnum(ext) {
		return ext
	}
	switch mediaType {
	case "application/pdf":
		return "pdf"
	case "image/jpeg":
		return "jpg"
	default:
		if sub := strings.TrimPrefix(mediaType, "image/"); isAlnum(sub) {
			return sub
		}
		return "bin"
	}
}

func isAlnum(s string) bool {
	if s == "" || len(s) > 10 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// publish отправляет событие без влияния на результат загрузки.
func (u *Uploader) publish(ctx context.Context, log *slog.Logger, key string, ev models.DocumentEvent) {
	if err := u.publisher.Publish(context.WithoutCancel(ctx), key, ev); err != nil {
		log.Warn("failed to publish document event", slog.String("routing_key", key), sl.Err(err))
	}
}
