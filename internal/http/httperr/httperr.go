// Package httperr переводит ошибки сервисов портала в HTTP-ответы:
// нет сессии 401, неверные данные 400/422, сбой платформы 502.
package httperr

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rental-portal/internal/http/response"
	"github.com/magabrotheeeer/rental-portal/internal/services/auth"
	"github.com/magabrotheeeer/rental-portal/internal/services/documents"
	"github.com/magabrotheeeer/rental-portal/internal/services/fleet"
	"github.com/magabrotheeeer/rental-portal/internal/services/profile"
	"github.com/magabrotheeeer/rental-portal/internal/services/viewer"
	"github.com/magabrotheeeer/rental-portal/internal/session"
)

type rule struct {
	target error
	status int
	// public сообщение берётся из target, а не из всей цепочки.
	public bool
}

var rules = []rule{
	{session.ErrNotAuthenticated, http.StatusUnauthorized, true},

	{profile.ErrInvalid, http.StatusUnprocessableEntity, false},
	{documents.ErrInvalidSlot, http.StatusBadRequest, false},
	{documents.ErrInvalidFile, http.StatusUnprocessableEntity, false},
	{auth.ErrInvalid, http.StatusUnprocessableEntity, false},
	{auth.ErrInvalidPhone, http.StatusUnprocessableEntity, false},
	{auth.ErrWeakPassword, http.StatusUnprocessableEntity, false},
	{auth.ErrPasswordMismatch, http.StatusUnprocessableEntity, true},
	{fleet.ErrInvalid, http.StatusUnprocessableEntity, false},
	{fleet.ErrInvalidImage, http.StatusUnprocessableEntity, false},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, true},
	{auth.ErrWrongPassword, http.StatusForbidden, true},
	{viewer.ErrForbidden, http.StatusForbidden, true},
	{fleet.ErrForbidden, http.StatusForbidden, true},

	{fleet.ErrNotFound, http.StatusNotFound, true},
	{fleet.ErrImageNotFound, http.StatusNotFound, true},

	{profile.ErrProfileMissing, http.StatusConflict, true},
	{profile.ErrNotLoaded, http.StatusConflict, true},
	{auth.ErrEmailTaken, http.StatusConflict, true},

	{profile.ErrLoadFailed, http.StatusBadGateway, true},
	{profile.ErrSaveFailed, http.StatusBadGateway, true},
	{documents.ErrStoreFailed, http.StatusBadGateway, true},
	{documents.ErrRecordFailed, http.StatusBadGateway, true},
	{viewer.ErrSignFailed, http.StatusBadGateway, true},
	{auth.ErrProviderFailed, http.StatusBadGateway, true},
	{fleet.ErrStoreFailed, http.StatusBadGateway, true},
}

// Status возвращает HTTP-статус и текст ошибки для клиента.
func Status(err error) (int, string) {
	for _, rl := range rules {
		if errors.Is(err, rl.target) {
			if rl.public {
				return rl.status, rl.target.Error()
			}
			return rl.status, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// Render пишет ответ с ошибкой. Ошибки валидатора оформляются через
// response.ValidationError.
func Render(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := Status(err)
	render.Status(r, status)

	var verrs validator.ValidationErrors
	if status == http.StatusUnprocessableEntity && errors.As(err, &verrs) {
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}
	render.JSON(w, r, response.Error(msg))
}
