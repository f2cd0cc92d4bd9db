package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Objects объектное хранилище платформы.
type Objects struct {
	c *Client
}

// NewObjects создаёт доступ к объектному хранилищу.
func NewObjects(c *Client) *Objects {
	return &Objects{c: c}
}

func objectPath(bucket, path string) string {
	segs := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return url.PathEscape(bucket) + "/" + strings.Join(segs, "/")
}

// Upload записывает объект по пути path. Существующий объект не перезаписывается.
func (o *Objects) Upload(ctx context.Context, token, bucket, path, contentType string, body io.Reader) error {
	const op = "platform.Objects.Upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.c.baseURL+"/storage/v1/object/"+objectPath(bucket, path), body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	o.c.authorize(req, token)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "max-age=3600")
	req.Header.Set("x-upsert", "false")
	if err := o.c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

// SignedURL выпускает ссылку на приватный объект, действующую expiresIn секунд.
func (o *Objects) SignedURL(ctx context.Context, token, bucket, path string, expiresIn int) (string, error) {
	const op = "platform.Objects.SignedURL"
	req, err := o.c.newRequest(ctx, http.MethodPost,
		"/storage/v1/object/sign/"+objectPath(bucket, path), token, signRequest{ExpiresIn: expiresIn})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	var out signResponse
	if err := o.c.do(req, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("%s: empty signed url", op)
	}
	if strings.HasPrefix(out.SignedURL, "http://") || strings.HasPrefix(out.SignedURL, "https://") {
		return out.SignedURL, nil
	}
	return o.c.baseURL + "/storage/v1" + out.SignedURL, nil
}

// PublicURL возвращает постоянную ссылку на объект публичного бакета. Сетевого вызова нет.
func (o *Objects) PublicURL(bucket, path string) string {
	return o.c.baseURL + "/storage/v1/object/public/" + objectPath(bucket, path)
}

type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// Remove удаляет объекты бакета по списку путей.
func (o *Objects) Remove(ctx context.Context, token, bucket string, paths ...string) error {
	const op = "platform.Objects.Remove"
	if len(paths) == 0 {
		return nil
	}
	req, err := o.c.newRequest(ctx, http.MethodDelete, "/storage/v1/object/"+bucket, token, removeRequest{Prefixes: paths})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := o.c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
