// Package platform реализует клиент хостинговой платформы: REST-шлюз к
// базе данных, объектное хранилище и сервис идентификации.
//
// Все запросы подписываются ключом проекта (apikey) и токеном пользователя,
// если он есть; иначе используется анонимный ключ.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client базовый HTTP-клиент платформы.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт клиент платформы. timeout единственный таймаут сетевых вызовов.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL возвращает адрес платформы без завершающего слэша.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError ошибка, которую вернула платформа.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform: status %d: %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("platform: status %d: %s", e.Status, e.Message)
}

// IsStatus сообщает, что err это APIError с указанным HTTP статусом.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// apiErrorBody объединяет форматы ошибок REST-шлюза, хранилища и сервиса идентификации.
type apiErrorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	var b apiErrorBody
	if err := json.Unmarshal(body, &b); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if len(b.Code) > 0 {
		var s string
		if json.Unmarshal(b.Code, &s) == nil {
			apiErr.Code = s
		} else {
			apiErr.Code = string(b.Code)
		}
	}
	if apiErr.Code == "" {
		apiErr.Code = b.ErrorCode
	}
	for _, m := range []string{b.Message, b.Msg, b.ErrorDescription, b.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
		reader = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	c.authorize(req, token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) authorize(req *http.Request, token string) {
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
}

// do выполняет запрос и декодирует тело ответа в out, если out не nil.
// Статусы вне 2xx превращаются в *APIError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
