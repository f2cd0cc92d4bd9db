package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/profile"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

// FindByUserID читает профиль клиента. Сессия не используется: доступ к
// строке ограничивает вызывающий сервис.
func (s *Storage) FindByUserID(ctx context.Context, _ *session.Session, userID string) (models.Record, error) {
	const op = "storage.FindByUserID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	fields := profile.Fields()
	cols := make([]string, 0, len(fields))
	dest := make([]any, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.Column)
		dest = append(dest, scanTarget(f.Kind))
	}
	query := fmt.Sprintf("SELECT %s FROM clients WHERE %s = $1", strings.Join(cols, ", "), profile.KeyColumn)

	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec := models.Record{profile.KeyColumn: userID}
	for i, f := range fields {
		rec[f.Column] = scannedValue(dest[i])
	}
	return rec, nil
}

// Upsert вставляет профиль или обновляет переданные колонки существующего.
// Колонки, которых нет в записи, не меняются.
func (s *Storage) Upsert(ctx context.Context, _ *session.Session, rec models.Record) error {
	const op = "storage.Upsert"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	userID, _ := rec[profile.KeyColumn].(string)
	if userID == "" {
		return fmt.Errorf("%s: empty %s", op, profile.KeyColumn)
	}
	cols, args, err := columnArgs(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	insertCols := append([]string{profile.KeyColumn}, cols...)
	placeholders := make([]string, len(insertCols))
	for i := range insertCols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(`INSERT INTO clients (%s) VALUES (%s)
		ON CONFLICT (%s) DO UPDATE SET %s`,
		strings.Join(insertCols, ", "), strings.Join(placeholders, ", "),
		profile.KeyColumn, strings.Join(sets, ", "))

	if _, err := s.DB.ExecContext(ctx, query, append([]any{userID}, args...)...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Update меняет переданные колонки профиля userID.
// Если профиля нет, возвращает models.ErrRecordNotFound.
func (s *Storage) Update(ctx context.Context, _ *session.Session, userID string, rec models.Record) error {
	const op = "storage.Update"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	cols, args, err := columnArgs(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sets := make([]string, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+2))
	}
	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf("UPDATE clients SET %s WHERE %s = $1", strings.Join(sets, ", "), profile.KeyColumn)

	res, err := s.DB.ExecContext(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
	}
	return nil
}

// FindLicensesExpiring возвращает клиентов, чьи удостоверения истекают в [from, to].
func (s *Storage) FindLicensesExpiring(ctx context.Context, from, to time.Time) ([]models.LicenseExpiry, error) {
	const op = "storage.FindLicensesExpiring"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT user_id, email, first_name, license_num, license_expiration_date
		FROM clients
		WHERE license_expiration_date BETWEEN $1 AND $2
		ORDER BY license_expiration_date, user_id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.LicenseExpiry
	for rows.Next() {
		var e models.LicenseExpiry
		if err := rows.Scan(&e.UserID, &e.Email, &e.FirstName, &e.LicenseNumber, &e.ExpirationDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ClientStats считает клиентов, новых клиентов с момента since и клиентов
// без одной из сторон удостоверения.
func (s *Storage) ClientStats(ctx context.Context, since time.Time) (models.ClientStats, error) {
	const op = "storage.ClientStats"
	var st models.ClientStats
	if err := checkCtx(ctx, op); err != nil {
		return st, err
	}
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE license_front_path IS NULL OR license_back_path IS NULL)
		FROM clients`, since).Scan(&st.Total, &st.NewLastWeek, &st.PendingLicenses)
	if err != nil {
		return st, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// columnArgs проверяет колонки записи по таблице соответствия и готовит
// аргументы запроса в порядке этой таблицы. Ключевая колонка пропускается.
func columnArgs(rec models.Record) ([]string, []any, error) {
	for col := range rec {
		if col == profile.KeyColumn {
			continue
		}
		if _, ok := profile.Lookup(col); !ok {
			return nil, nil, fmt.Errorf("unknown column %q", col)
		}
	}
	var (
		cols []string
		args []any
	)
	for _, f := range profile.Fields() {
		v, ok := rec[f.Column]
		if !ok {
			continue
		}
		arg, err := sqlValue(f.Kind, v)
		if err != nil {
			return nil, nil, fmt.Errorf("column %s: %w", f.Column, err)
		}
		cols = append(cols, f.Column)
		args = append(args, arg)
	}
	if len(cols) == 0 {
		return nil, nil, errors.New("no columns to write")
	}
	return cols, args, nil
}

func sqlValue(kind profile.Kind, v any) (any, error) {
	switch kind {
	case profile.Date:
		switch d := v.(type) {
		case nil:
			return nil, nil
		case string:
			if d == "" {
				return nil, nil
			}
			t, err := time.Parse(profile.DateLayout, d)
			if err != nil {
				return nil, err
			}
			return t, nil
		case time.Time:
			return d, nil
		}
	case profile.Path:
		switch p := v.(type) {
		case nil:
			return nil, nil
		case string:
			if p == "" {
				return nil, nil
			}
			return p, nil
		}
	case profile.Flag:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case profile.Text:
		switch t := v.(type) {
		case nil:
			return "", nil
		case string:
			return t, nil
		}
	}
	return nil, fmt.Errorf("unexpected %s value %T", kind, v)
}

func scanTarget(kind profile.Kind) any {
	switch kind {
	case profile.Date:
		return new(sql.NullTime)
	case profile.Flag:
		return new(sql.NullBool)
	default:
		return new(sql.NullString)
	}
}

func scannedValue(dest any) any {
	switch v := dest.(type) {
	case *sql.NullTime:
		if v.Valid {
			return v.Time.Format(profile.DateLayout)
		}
	case *sql.NullBool:
		return v.Valid && v.Bool
	case *sql.NullString:
		if v.Valid {
			return v.String
		}
	}
	return nil
}
