// Package view реализует HTTP-обработчик выдачи временной ссылки на документ.
//
// По умолчанию путь берётся из профиля текущего клиента по слоту. Параметр
// path позволяет запросить конкретный объект: клиенту только в своём
// пространстве имён, администратору любой.
package view

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rental-portal/internal/http/httperr"
	"github.com/magabrotheeeer/rental-portal/internal/http/response"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/models"
	"github.com/magabrotheeeer/rental-portal/internal/services/documents"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type Handler struct {
	log      *slog.Logger
	profiles ProfileLoader
	viewer   Viewer
}

// ProfileLoader загрузка профиля для поиска пути документа.
type ProfileLoader interface {
	Load(ctx context.Context, sess *session.Session) (models.ProfileForm, error)
}

// Viewer выдача подписанных ссылок.
type Viewer interface {
	SignedURL(ctx context.Context, sess *session.Session, path *string) (*models.SignedURL, error)
}

func New(log *slog.Logger, profiles ProfileLoader, viewer Viewer) *Handler {
	return &Handler{log: log, profiles: profiles, viewer: viewer}
}

// ServeHTTP godoc
// @Summary Ссылка на документ
// @Description Ссылка действует ограниченное время и не кешируется. Если документа нет, document равен null.
// @Tags Documents
// @Produce  json
// @Security BearerAuth
// @Param slot path string true "front или back"
// @Param path query string false "Путь объекта"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Чужой документ"
// @Failure 502 {object} response.ErrorResponse "Ссылка не выдана"
// @Router /profile/documents/{slot}/url [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.documents.view"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slot, err := documents.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		httperr.Render(w, r, err)
		return
	}
	sess, _ := session.FromContext(r.Context())

	var path *string
	if p := r.URL.Query().Get("path"); p != "" {
		path = &p
	} else {
		form, err := h.profiles.Load(r.Context(), sess)
		if err != nil {
			log.Error("failed to load profile", sl.Err(err))
			httperr.Render(w, r, err)
			return
		}
		path = form.LicenseFrontPath
		if slot == documents.Back {
			path = form.LicenseBackPath
		}
	}

	signed, err := h.viewer.SignedURL(r.Context(), sess, path)
	if err != nil {
		log.Warn("failed to sign document url", sl.Err(err))
		httperr.Render(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"slot":     slot,
		"document": signed,
	}))
}
