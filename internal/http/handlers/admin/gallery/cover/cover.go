// Package cover реализует HTTP-обработчик выбора обложки галереи.
package cover

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
	SetCover(ctx context.Context, sess *session.Session, carID int, imageID string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сделать фотографию обложкой
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID автомобиля"
// @Param imageID path string true "ID фотографии"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/cars/{id}/images/{imageID}/cover [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.gallery.cover"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	carID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}
	imageID := chi.URLParam(r, "imageID")

	sess, _ := session.FromContext(r.Context())
	if err := h.service.SetCover(r.Context(), sess, carID, imageID); err != nil {
		log.Error("failed to set cover", slog.Int("car_id", carID), slog.String("image_id", imageID), sl.Err(err))
		httperr.Render(w, r, err)
		return
	}
	render.JSON(w, r, response.OK())
}
