// Package auth реализует регистрацию, вход и смену пароля через сервис
// идентификации платформы.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rental-portal/internal/lib/password"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/lib/validation"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/platform"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

var (
	ErrInvalid            = errors.New("invalid input")
	ErrInvalidPhone       = errors.New("phone number is invalid")
	ErrWeakPassword       = password.ErrWeak
	ErrEmailTaken         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrProviderFailed     = errors.New("identity provider request failed")
)

// FrenchPrefix код страны, для которого номер проверяется строго.
const FrenchPrefix = "+33"

// Identity операции сервиса идентификации, нужные порталу.
type Identity interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.AuthTokens, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (string, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdateUser(ctx context.Context, token, password string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Service сценарии аутентификации портала.
type Service struct {
	identity  Identity
	log       *slog.Logger
	validate  *validator.Validate
	publicURL string
}

// New создаёт Service. publicURL адрес портала для ссылок в письмах.
func New(identity Identity, log *slog.Logger, publicURL string) *Service {
	return &Service{
		identity:  identity,
		log:       log,
		validate:  validation.New(),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// NormalizePhone оставляет в номере только цифры. Для французских номеров
// отбрасывается ведущий 0 и требуется ровно 9 цифр.
func NormalizePhone(countryCode, phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return "", fmt.Errorf("%w: number is required", ErrInvalidPhone)
	}
	if countryCode == FrenchPrefix {
		digits = strings.TrimPrefix(digits, "0")
		if len(digits) != 9 {
			return "", fmt.Errorf("%w: expected 9 digits without leading 0", ErrInvalidPhone)
		}
	}
	return countryCode + digits, nil
}

// Register регистрирует клиента и возвращает id пользователя.
func (s *Service) Register(ctx context.Context, reg models.Registration) (string, error) {
	const op = "services.auth.Register"
	if err := s.validate.Struct(reg); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	phone, err := NormalizePhone(reg.CountryCode, reg.Phone)
	if err != nil {
		return "", err
	}
	if err := password.Validate(reg.Password); err != nil {
		return "", err
	}

	exists, err := s.identity.EmailExists(ctx, reg.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrProviderFailed, err)
	}
	if exists {
		return "", ErrEmailTaken
	}

	userID, err := s.identity.SignUp(ctx, reg.Email, reg.Password, map[string]any{
		"first_name":    reg.FirstName,
		"last_name":     reg.LastName,
		"phone_number":  phone,
		"date_of_birth": reg.DateOfBirth,
	})
	if err != nil {
		var apiErr *platform.APIError
		if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "Password") {
			return "", fmt.Errorf("%w: %s", ErrWeakPassword, apiErr.Message)
		}
		return "", fmt.Errorf("%s: %w: %w", op, ErrProviderFailed, err)
	}
	s.log.Info("client registered", slog.String("user_id", userID))
	return userID, nil
}

// Login входит по e-mail и паролю.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (*models.AuthTokens, error) {
	const op = "services.auth.Login"
	if err := s.validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	tokens, err := s.identity.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		if isInvalidLogin(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProviderFailed, err)
	}
	return tokens, nil
}

// ForgotPassword отправляет письмо восстановления со ссылкой на страницу смены пароля.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "services.auth.ForgotPassword"
	if err := s.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.identity.ResetPasswordForEmail(ctx, email, s.publicURL+"/update-password"); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrProviderFailed, err)
	}
	return nil
}

// UpdatePassword задаёт новый пароль по сессии восстановления.
func (s *Service) UpdatePassword(ctx context.Context, sess *session.Session, newPassword string) error {
	const op = "services.auth.UpdatePassword"
	if err := session.Require(sess); err != nil {
		return err
	}
	if err := password.Validate(newPassword); err != nil {
		return err
	}
	if err := s.identity.UpdateUser(ctx, sess.AccessToken, newPassword); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrProviderFailed, err)
	}
	return nil
}

// ChangePassword меняет пароль после повторной проверки текущего.
func (s *Service) ChangePassword(ctx context.Context, sess *session.Session, current, newPassword, confirm string) error {
	const op = "services.auth.ChangePassword"
	if err := session.Require(sess); err != nil {
		return err
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if err := password.Validate(newPassword); err != nil {
		return err
	}
	if _, err := s.identity.SignInWithPassword(ctx, sess.Email, current); err != nil {
		if isInvalidLogin(err) {
			return ErrWrongPassword
		}
		return fmt.Errorf("%s: %w: %w", op, ErrProviderFailed, err)
	}
	if err := s.identity.UpdateUser(ctx, sess.AccessToken, newPassword); err != nil {
		s.log.Error("failed to update password", slog.String("op", op),
			slog.String("user_id", sess.UserID), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrProviderFailed, err)
	}
	return nil
}

func isInvalidLogin(err error) bool {
	var apiErr *platform.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status != http.StatusBadRequest && apiErr.Status != http.StatusUnauthorized {
		return false
	}
	return strings.Contains(apiErr.Message, "Invalid login") || apiErr.Code == "invalid_credentials"
}
