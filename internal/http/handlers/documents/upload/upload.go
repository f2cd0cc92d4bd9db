// Package upload реализует HTTP-обработчик загрузки скана водительского
// удостоверения (multipart, поле file) в слот front или back.
package upload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rental-portal/internal/http/httperr"
	"github.com/magabrotheeeer/rental-portal/internal/http/response"
	"github.com/magabrotheeeer/rental-portal/internal/lib/sl"
	"github.com/magabrotheeeer/rental-portal/internal/services/documents"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

// multipartOverhead запас на заголовки multipart сверх размера файла.
const multipartOverhead = 1 << 20

type Handler struct {
	log     *slog.Logger
	service Service
	maxSize int64
}

type Service interface {
	Upload(ctx context.Context, sess *session.Session, slot documents.Slot, file documents.File) (string, error)
}

// New создает Handler. maxSize предел размера файла в байтах.
func New(log *slog.Logger, service Service, maxSize int64) *Handler {
	return &Handler{log: log, service: service, maxSize: maxSize}
}

// ServeHTTP godoc
// @Summary Загрузить скан удостоверения
// @Tags Documents
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param slot path string true "front или back"
// @Param file formData file true "Изображение или PDF"
// @Success 201 {object} response.Response "Путь документа"
// @Failure 400 {object} response.ErrorResponse "Неизвестный слот или нет файла"
// @Failure 413 {object} response.ErrorResponse "Файл слишком большой"
// @Failure 422 {object} response.ErrorResponse "Неподдерживаемый файл"
// @Failure 502 {object} response.ErrorResponse "Документ не сохранён"
// @Router /profile/documents/{slot} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.documents.upload"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slot, err := documents.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		httperr.Render(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("file is too large"))
			return
		}
		log.Info("multipart file missing", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("multipart field file is required"))
		return
	}
	defer file.Close()

	sess, _ := session.FromContext(r.Context())
	path, err := h.service.Upload(r.Context(), sess, slot, documents.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		log.Error("document upload failed", slog.String("slot", string(slot)), sl.Err(err))
		httperr.Render(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"slot": slot,
		"path": path,
	}))
}
