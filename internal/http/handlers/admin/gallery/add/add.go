// Package add реализует HTTP-обработчик загрузки фотографии в галерею
// автомобиля. Первая фотография становится обложкой.
package add

import (
	"context"
	"errors"
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
	"github.com/magabrotheeeer/rental-portal/internal/services/fleet"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type Handler struct {
	log     *slog.Logger
	service Service
	maxSize int64
}

type Service interface {
	AddImage(ctx context.Context, sess *session.Session, carID int, img fleet.Image) (models.CarImage, error)
}

func New(log *slog.Logger, service Service, maxSize int64) *Handler {
	return &Handler{log: log, service: service, maxSize: maxSize}
}

// ServeHTTP godoc
// @Summary Добавить фотографию автомобиля
// @Tags Admin
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID автомобиля"
// @Param file formData file true "Изображение"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/cars/{id}/images [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.gallery.add"
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

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("file is too large"))
			return
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("multipart field file is required"))
		return
	}
	defer file.Close()

	sess, _ := session.FromContext(r.Context())
	img, err := h.service.AddImage(r.Context(), sess, carID, fleet.Image{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		log.Error("failed to add car image", slog.Int("car_id", carID), sl.Err(err))
		httperr.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"image": img,
	}))
}
