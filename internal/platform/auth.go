package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/rental-portal/internal/models"
)

// Auth сервис идентификации платформы.
type Auth struct {
	c *Client
}

// NewAuth создаёт клиент сервиса идентификации.
func NewAuth(c *Client) *Auth {
	return &Auth{c: c}
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

// SignInWithPassword входит по e-mail и паролю.
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*models.AuthTokens, error) {
	const op = "platform.Auth.SignInWithPassword"
	req, err := a.c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "",
		passwordGrant{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var out tokenResponse
	if err := a.c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthTokens{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    out.TokenType,
		ExpiresIn:    out.ExpiresIn,
		UserID:       out.User.ID,
	}, nil
}

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type signUpResponse struct {
	ID   string `json:"id"`
	User *struct {
		ID string `json:"id"`
	} `json:"user"`
}

// SignUp регистрирует пользователя с метаданными и возвращает его id.
func (a *Auth) SignUp(ctx context.Context, email, password string, metadata map[string]any) (string, error) {
	const op = "platform.Auth.SignUp"
	req, err := a.c.newRequest(ctx, http.MethodPost, "/auth/v1/signup", "",
		signUpRequest{Email: email, Password: password, Data: metadata})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	var out signUpResponse
	if err := a.c.do(req, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	// С подтверждением почты платформа возвращает пользователя без сессии.
	if out.User != nil && out.User.ID != "" {
		return out.User.ID, nil
	}
	return out.ID, nil
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordForEmail отправляет письмо восстановления со ссылкой на redirectTo.
func (a *Auth) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	const op = "platform.Auth.ResetPasswordForEmail"
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	req, err := a.c.newRequest(ctx, http.MethodPost, path, "", emailRequest{Email: email})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := a.c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type updateUserRequest struct {
	Password string `json:"password"`
}

// UpdateUser меняет пароль пользователя, которому принадлежит token.
func (a *Auth) UpdateUser(ctx context.Context, token, password string) error {
	const op = "platform.Auth.UpdateUser"
	req, err := a.c.newRequest(ctx, http.MethodPut, "/auth/v1/user", token, updateUserRequest{Password: password})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := a.c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type emailExistsRequest struct {
	Email string `json:"email_to_check"`
}

// EmailExists вызывает функцию check_email_exists базы платформы.
func (a *Auth) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "platform.Auth.EmailExists"
	req, err := a.c.newRequest(ctx, http.MethodPost, "/rest/v1/rpc/check_email_exists", "",
		emailExistsRequest{Email: email})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	var exists bool
	if err := a.c.do(req, &exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
