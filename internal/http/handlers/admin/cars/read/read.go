// Package read реализует HTTP-обработчик карточки автомобиля по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
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
	Get(ctx context.Context, sess *session.Session, id int) (models.Car, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить автомобиль
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID автомобиля"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/cars/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.cars.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	sess, _ := session.FromContext(r.Context())
	car, err := h.service.Get(r.Context(), sess, id)
	if err != nil {
		log.Error("failed to read car", slog.Int("id", id), sl.Err(err))
		httperr.Render(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"car": car,
	}))
}
