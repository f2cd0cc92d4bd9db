// Package dashboard реализует HTTP-обработчик показателей панели администратора.
package dashboard

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

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	KPIs(ctx context.Context, sess *session.Session) (models.DashboardKPIs, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Показатели автопарка и клиентов
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Router /admin/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.dashboard"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, _ := session.FromContext(r.Context())
	kpis, err := h.service.KPIs(r.Context(), sess)
	if err != nil {
		log.Error("failed to compute dashboard", sl.Err(err))
		httperr.Render(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(kpis))
}
