// Package patch реализует HTTP-обработчик частичного редактирования профиля.
//
// Тело запроса это набор пар "поле формы: значение" в camelCase. Правки
// применяются к загруженной форме и сохраняются, только если профиль
// удалось загрузить.
package patch

import (
	"context"
	"encoding/json"
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

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Patch(ctx context.Context, sess *session.Session, changes map[string]string) (models.ProfileForm, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Частичное редактирование профиля
// @Tags Profile
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body map[string]string true "Поля формы и новые значения"
// @Success 200 {object} response.Response "Сохранённая форма"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Неизвестное или нередактируемое поле"
// @Failure 502 {object} response.ErrorResponse "Сбой платформы"
// @Router /profile [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.patch"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var changes map[string]string
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if len(changes) == 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("no fields to update"))
		return
	}

	sess, _ := session.FromContext(r.Context())
	form, err := h.service.Patch(r.Context(), sess, changes)
	if err != nil {
		log.Error("failed to patch profile", sl.Err(err))
		httperr.Render(w, r, err)
		return
	}
	log.Info("profile patched", slog.Int("fields", len(changes)))
	render.JSON(w, r, response.OKWithData(form))
}
