package http

import (
	"errors"
	"net/http"

	"github.com/diillson/user-service-go/internal/domain/repository"
	apierrors "github.com/diillson/user-service-go/pkg/errors"
)

// FromDomain traduz um erro de domínio do serviço de usuários para um
// APIError com o status HTTP do contrato. A mensagem do erro de domínio
// é preservada verbatim: ela faz parte da API.
func FromDomain(err error) *apierrors.APIError {
	switch {
	case errors.Is(err, repository.ErrInvalidUserID):
		return apierrors.New(http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, repository.ErrUserNotFound):
		return apierrors.New(http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, repository.ErrUsernameExists),
		errors.Is(err, repository.ErrEmailExists):
		return apierrors.New(http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, repository.ErrUserConflict):
		return apierrors.New(http.StatusConflict, err.Error(), nil)
	default:
		return apierrors.InternalServer("", err)
	}
}
