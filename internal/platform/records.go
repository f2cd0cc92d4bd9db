package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

// codeNoRows код REST-шлюза для запроса одной строки, когда строк нет.
const codeNoRows = "PGRST116"

// Records таблица, доступная через REST-шлюз платформы, с уникальным ключом key.
// Запросы идут с токеном пользователя, доступ ограничивают политики строк платформы.
type Records struct {
	c     *Client
	table string
	key   string
}

// NewRecords создаёт доступ к таблице table с уникальной колонкой key.
func NewRecords(c *Client, table, key string) *Records {
	return &Records{c: c, table: table, key: key}
}

func (r *Records) path(query url.Values) string {
	return "/rest/v1/" + url.PathEscape(r.table) + "?" + query.Encode()
}

func token(sess *session.Session) string {
	if sess == nil {
		return ""
	}
	return sess.AccessToken
}

// FindByUserID читает единственную строку по ключу.
// Если строки нет, возвращает models.ErrRecordNotFound.
func (r *Records) FindByUserID(ctx context.Context, sess *session.Session, userID string) (models.Record, error) {
	const op = "platform.Records.FindByUserID"
	q := url.Values{}
	q.Set("select", "*")
	q.Set(r.key, "eq."+userID)
	q.Set("limit", "1")

	req, err := r.c.newRequest(ctx, http.MethodGet, r.path(q), token(sess), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var rows []models.Record
	if err := r.c.do(req, &rows); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == codeNoRows {
			return nil, fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
	}
	return rows[0], nil
}

// Upsert вставляет строку или обновляет переданные колонки существующей строки с тем же ключом.
func (r *Records) Upsert(ctx context.Context, sess *session.Session, rec models.Record) error {
	const op = "platform.Records.Upsert"
	q := url.Values{}
	q.Set("on_conflict", r.key)

	req, err := r.c.newRequest(ctx, http.MethodPost, r.path(q), token(sess), rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")
	if err := r.c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Update меняет переданные колонки строки userID.
// Если строка не найдена, возвращает models.ErrRecordNotFound.
func (r *Records) Update(ctx context.Context, sess *session.Session, userID string, rec models.Record) error {
	const op = "platform.Records.Update"
	q := url.Values{}
	q.Set(r.key, "eq."+userID)

	req, err := r.c.newRequest(ctx, http.MethodPatch, r.path(q), token(sess), rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Prefer", "return=representation")
	var rows []models.Record
	if err := r.c.do(req, &rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
	}
	return nil
}
