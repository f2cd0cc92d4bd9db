// Package remove реализует HTTP-обработчик удаления автомобиля вместе с галереей.
package remove

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
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Delete(ctx context.Context, sess *session.Session, id int) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить автомобиль
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID автомобиля"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/cars/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.cars.remove"
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
	if err := h.service.Delete(r.Context(), sess, id); err != nil {
		log.Error("failed to delete car", slog.Int("id", id), sl.Err(err))
		httperr.Render(w, r, err)
		return
	}
	log.Info("car deleted", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
