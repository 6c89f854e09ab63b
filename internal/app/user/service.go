package user

import (
	"context"
	"fmt"
	"time"

	"github.com/diillson/user-service-go/internal/domain/model"
	"github.com/diillson/user-service-go/internal/domain/repository"
	"github.com/diillson/user-service-go/pkg/cache"
	"github.com/diillson/user-service-go/pkg/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultListLimit é o limite de paginação quando o cliente não informa um
	DefaultListLimit = 10

	cacheTTL = 5 * time.Minute
)

// Service orquestra validação, consultas ao repositório, unicidade e
// projeção pública dos usuários
type Service struct {
	repo   repository.UserRepository
	cache  cache.Cache
	logger *logging.ContextLogger
}

// NewService cria um novo serviço de usuários
func NewService(repo repository.UserRepository, cache cache.Cache, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: &logging.ContextLogger{Logger: logger},
	}
}

// ValidateUserID valida o identificador recebido do cliente: precisa ser
// um UUID no formato canônico. Sem efeitos colaterais.
func ValidateUserID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrInvalidUserID
	}
	return nil
}

// CreateUser cria um novo usuário após checar colisões de username/email
func (s *Service) CreateUser(ctx context.Context, account *model.UserAccount) (*model.User, error) {
	existing, err := s.repo.FindByUsernameOrEmail(ctx, account.Username, account.Email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// Desempate fixo: colisão de email só é reportada quando o
		// username não colide também
		if existing.Username == account.Username {
			return nil, repository.ErrUsernameExists
		}
		return nil, repository.ErrEmailExists
	}

	hash, err := hashPassword(account.Password)
	if err != nil {
		return nil, err
	}

	entity := &model.UserEntity{
		Name:     account.Name,
		Username: account.Username,
		Email:    account.Email,
		Password: hash,
		Role:     account.Role,
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.logger.InfoCtx(ctx, "usuário criado",
		zap.String("id", entity.ID),
		zap.String("username", entity.Username))

	return entity.Public(), nil
}

// ListUsers retorna a projeção pública de até limit usuários, pulando
// offset. Um limit explícito de zero é respeitado e retorna uma página
// vazia; o default só se aplica a valores negativos.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	if limit < 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entities, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(entities))
	for _, entity := range entities {
		users = append(users, entity.Public())
	}

	return users, nil
}

// GetUserByID busca um usuário pelo ID, validando o formato antes de
// tocar o banco
func (s *Service) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := ValidateUserID(id); err != nil {
		return nil, err
	}

	var user model.User

	cacheKey := "user:id:" + id
	found, err := s.cache.Get(ctx, cacheKey, &user)
	if err != nil {
		s.logger.WarnCtx(ctx, "erro ao buscar usuário do cache",
			zap.String("id", id),
			zap.Error(err))
	} else if found {
		return &user, nil
	}

	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	public := entity.Public()
	if err := s.cache.Set(ctx, cacheKey, public, cacheTTL); err != nil {
		s.logger.WarnCtx(ctx, "erro ao armazenar usuário no cache", zap.Error(err))
	}

	return public, nil
}

// GetUserByUsername busca um usuário pelo username exato. Usernames são
// texto livre: nenhuma validação de formato se aplica.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User

	cacheKey := "user:username:" + username
	found, err := s.cache.Get(ctx, cacheKey, &user)
	if err != nil {
		s.logger.WarnCtx(ctx, "erro ao buscar usuário do cache",
			zap.String("username", username),
			zap.Error(err))
	} else if found {
		return &user, nil
	}

	entity, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	public := entity.Public()
	if err := s.cache.Set(ctx, cacheKey, public, cacheTTL); err != nil {
		s.logger.WarnCtx(ctx, "erro ao armazenar usuário no cache", zap.Error(err))
	}

	return public, nil
}

// UpdateUser substitui username, email, senha (re-hasheada) e role do
// usuário. O campo Name do payload é aceito mas intencionalmente NÃO é
// aplicado, espelhando o comportamento corrente da API; ver DESIGN.md.
// Não há re-checagem de unicidade: uma colisão só é barrada pela
// constraint do banco e chega como ErrUserConflict.
func (s *Service) UpdateUser(ctx context.Context, id string, account *model.UserAccount) (*model.User, error) {
	if err := ValidateUserID(id); err != nil {
		return nil, err
	}

	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldUsername := entity.Username

	hash, err := hashPassword(account.Password)
	if err != nil {
		return nil, err
	}

	entity.Username = account.Username
	entity.Email = account.Email
	entity.Password = hash
	entity.Role = account.Role

	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, err
	}

	s.invalidate(ctx, entity.ID, oldUsername, entity.Username)

	s.logger.InfoCtx(ctx, "usuário atualizado",
		zap.String("id", entity.ID),
		zap.String("username", entity.Username))

	return entity.Public(), nil
}

// DeleteUser remove permanentemente o usuário. Um segundo delete do
// mesmo ID falha com ErrUserNotFound.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := ValidateUserID(id); err != nil {
		return err
	}

	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, entity.ID); err != nil {
		return err
	}

	s.invalidate(ctx, entity.ID, entity.Username)

	s.logger.InfoCtx(ctx, "usuário excluído",
		zap.String("id", entity.ID),
		zap.String("username", entity.Username))

	return nil
}

// invalidate remove as entradas de cache de um usuário
func (s *Service) invalidate(ctx context.Context, id string, usernames ...string) {
	keys := []string{"user:id:" + id}
	for _, username := range usernames {
		if username != "" {
			keys = append(keys, "user:username:"+username)
		}
	}

	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnCtx(ctx, "erro ao invalidar cache de usuário",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}

// hashPassword aplica o hash unidirecional à senha em texto claro
func hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("falha ao processar senha: %w", err)
	}
	return string(hash), nil
}
