// Package read реализует HTTP-обработчик чтения профиля текущего клиента.
//
// Если запись клиента ещё не создана, возвращается пустая форма с id пользователя.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rental-portal/internal/http/httperr"
	"github.com/magabrotheeeer/rental-portal/internal/http/response"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

// Handler обрабатывает запросы на чтение профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает загрузку профиля.
type Service interface {
	Load(ctx context.Context, sess *session.Session) (models.ProfileForm, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Профиль клиента
// @Tags Profile
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Форма профиля"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 502 {object} response.ErrorResponse "Профиль не загружен"
// @Router /profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, _ := session.FromContext(r.Context())
	form, err := h.service.Load(r.Context(), sess)
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		httperr.Render(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(form))
}
