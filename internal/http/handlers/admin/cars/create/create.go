// Package create реализует HTTP-обработчик добавления автомобиля в автопарк.
//
// Незаполненные категория, энергия, коробка, год и статус получают значения
// по умолчанию в сервисе.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rental-portal/internal/http/httperr"
	"github.com/magabrotheeeer/rental-portal/internal/http/response"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/lib/validation"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Create(ctx context.Context, sess *session.Session, in models.CarInput) (int, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить автомобиль
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CarInput true "Данные автомобиля"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/cars [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.cars.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var in models.CarInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(in); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sess, _ := session.FromContext(r.Context())
	id, err := h.service.Create(r.Context(), sess, in)
	if err != nil {
		log.Error("failed to create car", sl.Err(err))
		httperr.Render(w, r, err)
		return
	}

	log.Info("car created", slog.Int("id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
