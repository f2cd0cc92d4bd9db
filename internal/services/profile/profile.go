// Package profile синхронизирует форму профиля клиента с записью в таблице clients.
//
// Запись читается по идентификатору пользователя из сессии, сохраняется
// upsert-ом по тому же ключу. Последняя запись выигрывает, оптимистичных
// блокировок нет, повторов при ошибках тоже.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/lib/validation"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	schema "github.com/magabrotheeeer/rental-portal/internal/profile"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

var (
	// ErrLoadFailed профиль не удалось прочитать.
	ErrLoadFailed = errors.New("could not load profile")
	// ErrSaveFailed профиль не удалось сохранить, форма не изменилась.
	ErrSaveFailed = errors.New("could not save profile")
	// ErrProfileMissing точечное обновление не нашло записи клиента.
	ErrProfileMissing = errors.New("save your personal information first")
	// ErrNotLoaded сохранение до успешной загрузки.
	ErrNotLoaded = errors.New("profile is not loaded")
	// ErrInvalid данные формы не прошли проверку.
	ErrInvalid = errors.New("invalid profile data")
)

// Store хранилище записей клиентов.
type Store interface {
	FindByUserID(ctx context.Context, sess *session.Session, userID string) (models.Record, error)
	Upsert(ctx context.Context, sess *session.Session, rec models.Record) error
	Update(ctx context.Context, sess *session.Session, userID string, rec models.Record) error
}

// Synchronizer загружает и сохраняет профиль текущего пользователя.
type Synchronizer struct {
	store    Store
	log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// New создаёт Synchronizer поверх хранилища store.
func New(store Store, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		store:    store,
		log:      log,
		validate: validation.New(),
		now:      time.Now,
	}
}

// Load читает профиль пользователя сессии. Если записи ещё нет, возвращает
// пустую форму с заполненным id.
func (s *Synchronizer) Load(ctx context.Context, sess *session.Session) (models.ProfileForm, error) {
	const op = "services.profile.Load"
	if err := session.Require(sess); err != nil {
		return models.ProfileForm{}, err
	}

	rec, err := s.store.FindByUserID(ctx, sess, sess.UserID)
	if errors.Is(err, models.ErrRecordNotFound) {
		s.log.Info("profile not found, using defaults", slog.String("user_id", sess.UserID))
		return models.ProfileForm{UserID: sess.UserID}, nil
	}
	if err != nil {
		s.log.Error("failed to load profile", slog.String("op", op), slog.String("user_id", sess.UserID), sl.Err(err))
		return models.ProfileForm{}, fmt.Errorf("%s: %w: %w", op, ErrLoadFailed, err)
	}

	form := schema.Decode(rec)
	form.UserID = sess.UserID
	return form, nil
}

// Save проверяет форму и сохраняет редактируемые поля upsert-ом по id
// пользователя сессии. Пути документов и VIP-статус не трогаются.
func (s *Synchronizer) Save(ctx context.Context, sess *session.Session, form models.ProfileForm) error {
	const op = "services.profile.Save"
	if err := session.Require(sess); err != nil {
		return err
	}
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	form.UserID = sess.UserID
	if err := s.store.Upsert(ctx, sess, schema.EncodeEditable(form)); err != nil {
		s.log.Error("failed to save profile", slog.String("op", op), slog.String("user_id", sess.UserID), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrSaveFailed, err)
	}
	s.log.Info("profile saved", slog.String("user_id", sess.UserID))
	return nil
}

// UpdateLicense точечно обновляет номер и даты водительского удостоверения.
// Пустые даты сохраняются как NULL. Запись клиента должна уже существовать.
func (s *Synchronizer) UpdateLicense(ctx context.Context, sess *session.Session, info models.LicenseInfo) error {
	const op = "services.profile.UpdateLicense"
	if err := session.Require(sess); err != nil {
		return err
	}
	if err := s.validate.Struct(info); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.checkLicenseDates(info); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	rec := models.Record{
		mustColumn("licenseNumber"):         info.Number,
		mustColumn("licenseObtainedDate"):   nullIfEmpty(info.ObtainedDate),
		mustColumn("licenseExpirationDate"): nullIfEmpty(info.ExpirationDate),
	}
	err := s.store.Update(ctx, sess, sess.UserID, rec)
	if errors.Is(err, models.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrProfileMissing)
	}
	if err != nil {
		s.log.Error("failed to update license", slog.String("op", op), slog.String("user_id", sess.UserID), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrSaveFailed, err)
	}
	s.log.Info("license updated", slog.String("user_id", sess.UserID))
	return nil
}

// checkLicenseDates: дата получения не в будущем и не старше 100 лет,
// срок действия не в прошлом.
func (s *Synchronizer) checkLicenseDates(info models.LicenseInfo) error {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if info.ObtainedDate != "" {
		d, err := time.Parse(schema.DateLayout, info.ObtainedDate)
		if err != nil {
			return err
		}
		if d.After(today) {
			return errors.New("license obtained date is in the future")
		}
		if d.Before(today.AddDate(-100, 0, 0)) {
			return errors.New("license obtained date is too far in the past")
		}
	}
	if info.ExpirationDate != "" {
		d, err := time.Parse(schema.DateLayout, info.ExpirationDate)
		if err != nil {
			return err
		}
		if d.Before(today) {
			return errors.New("license is expired")
		}
	}
	return nil
}

func mustColumn(form string) string {
	col, ok := schema.Column(form)
	if !ok {
		panic("profile: unknown form field " + form)
	}
	return col
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
