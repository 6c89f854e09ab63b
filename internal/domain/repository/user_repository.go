package repository

import (
	"context"
	"errors"

	"github.com/diillson/user-service-go/internal/domain/model"
)

// Erros de domínio do serviço de usuários. As mensagens são parte do
// contrato da API e chegam sem alteração ao cliente.
var (
	ErrInvalidUserID  = errors.New("User Id is not valid")
	ErrUserNotFound   = errors.New("User not found")
	ErrUsernameExists = errors.New("Username already exists")
	ErrEmailExists    = errors.New("Email already exists")
	ErrUserConflict   = errors.New("User already exists")
)

// UserRepository define a interface para armazenamento de usuários
type UserRepository interface {
	// Create insere um novo usuário, gerando o ID e os timestamps
	Create(ctx context.Context, entity *model.UserEntity) error

	// List retorna até limit usuários pulando offset, em ordem de criação
	List(ctx context.Context, limit, offset int) ([]*model.UserEntity, error)

	// FindByID busca um usuário pelo ID; ErrUserNotFound se não existir
	FindByID(ctx context.Context, id string) (*model.UserEntity, error)

	// FindByUsername busca um usuário pelo username exato; ErrUserNotFound se não existir
	FindByUsername(ctx context.Context, username string) (*model.UserEntity, error)

	// FindByUsernameOrEmail busca um usuário cujo username OU email coincida.
	// Retorna (nil, nil) quando nenhum registro coincide.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.UserEntity, error)

	// Update persiste a entidade inteira; ErrUserConflict em violação de unicidade
	Update(ctx context.Context, entity *model.UserEntity) error

	// Delete remove permanentemente o usuário; ErrUserNotFound se não existir
	Delete(ctx context.Context, id string) error
}
