// Package viewer выдаёт временные ссылки на приватные документы клиента.
// Ссылки запрашиваются при каждом просмотре и нигде не хранятся.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/metrics"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

var (
	// ErrForbidden путь вне пространства имён пользователя.
	ErrForbidden = errors.New("document does not belong to the user")
	// ErrSignFailed хранилище не выдало ссылку.
	ErrSignFailed = errors.New("could not sign document url")
)

// Signer выпускает подписанные ссылки на объекты.
type Signer interface {
	SignedURL(ctx context.Context, token, bucket, path string, expiresIn int) (string, error)
}

// Viewer выдаёт ссылки на документы бакета bucket со сроком ttl.
type Viewer struct {
	signer  Signer
	metrics *metrics.Metrics
	log     *slog.Logger
	bucket  string
	ttl     time.Duration
	now     func() time.Time
}

// New создаёт Viewer.
func New(signer Signer, m *metrics.Metrics, log *slog.Logger, bucket string, ttl time.Duration) *Viewer {
	return &Viewer{
		signer:  signer,
		metrics: m,
		log:     log,
		bucket:  bucket,
		ttl:     ttl,
		now:     time.Now,
	}
}

// SignedURL возвращает ссылку на документ path. Пустой путь означает, что
// документа нет: результат nil без обращения к хранилищу.
func (v *Viewer) SignedURL(ctx context.Context, sess *session.Session, path *string) (*models.SignedURL, error) {
	const op = "services.viewer.SignedURL"
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	if path == nil || *path == "" {
		return nil, nil
	}
	if !isCanonical(*path) || (!sess.IsAdmin() && !strings.HasPrefix(*path, sess.UserID+"/")) {
		v.metrics.SignedURL(metrics.ResultSignForbidden)
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	issued := v.now()
	url, err := v.signer.SignedURL(ctx, sess.AccessToken, v.bucket, *path, int(v.ttl/time.Second))
	if err != nil {
		v.log.Error("failed to sign document url", slog.String("op", op),
			slog.String("user_id", sess.UserID), slog.String("path", *path), sl.Err(err))
		v.metrics.SignedURL(metrics.ResultSignFailed)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrSignFailed, err)
	}
	v.metrics.SignedURL(metrics.ResultOK)
	return &models.SignedURL{URL: url, ExpiresAt: issued.Add(v.ttl).UTC()}, nil
}

// isCanonical сообщает, что путь не содержит пустых сегментов, "." и "..".
// Иначе проверка префикса пространства имён не имеет смысла.
func isCanonical(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." || strings.Contains(seg, "\\") {
			return false
		}
	}
	return true
}
