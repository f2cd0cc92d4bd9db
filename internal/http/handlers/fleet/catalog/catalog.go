// Package catalog реализует публичный HTTP-обработчик каталога автопарка.
package catalog

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
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Catalog(ctx context.Context) ([]models.Car, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог автомобилей
// @Tags Fleet
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /fleet [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.catalog"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cars, err := h.service.Catalog(r.Context())
	if err != nil {
		log.Error("failed to list fleet", sl.Err(err))
		httperr.Render(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"cars":  cars,
		"count": len(cars),
	}))
}
