package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diillson/user-service-go/internal/domain/model"
	"github.com/diillson/user-service-go/internal/domain/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserRepository implementa repository.UserRepository sobre GORM
type UserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewUserRepository cria um novo repositório de usuários
func NewUserRepository(db *gorm.DB, logger *zap.Logger) *UserRepository {
	tracer := otel.GetTracerProvider().Tracer("user-service.repository.user")

	return &UserRepository{
		db:     db,
		logger: logger,
		tracer: tracer,
	}
}

// Create insere um novo usuário. A identidade e os timestamps são
// responsabilidade desta camada: o domínio nunca os fabrica.
func (r *UserRepository) Create(ctx context.Context, entity *model.UserEntity) error {
	ctx, span := r.tracer.Start(
		ctx,
		"UserRepository.Create",
		trace.WithAttributes(
			attribute.String("db.operation", "insert"),
			attribute.String("db.table", "users"),
			attribute.String("user.username", entity.Username),
		),
	)
	defer span.End()

	if entity.ID == "" {
		entity.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			// A pré-checagem de unicidade não é atômica com o insert:
			// criações concorrentes podem passar as duas e uma cai aqui
			span.SetStatus(codes.Error, "unique constraint violation")
			return repository.ErrUserConflict
		}

		r.logger.Error("falha ao criar usuário",
			zap.String("username", entity.Username),
			zap.Error(err))

		span.SetStatus(codes.Error, "database error")
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", err.Error()),
		)

		return fmt.Errorf("falha ao criar usuário: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", entity.ID))
	span.SetStatus(codes.Ok, "")
	return nil
}

// List retorna usuários em ordem de criação, paginados por limit/offset
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*model.UserEntity, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"UserRepository.List",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "users"),
			attribute.Int("query.limit", limit),
			attribute.Int("query.offset", offset),
		),
	)
	defer span.End()

	var entities []*model.UserEntity

	err := r.db.WithContext(ctx).
		Order("created_at").
		Limit(limit).
		Offset(offset).
		Find(&entities).Error
	if err != nil {
		r.logger.Error("falha ao listar usuários", zap.Error(err))

		span.SetStatus(codes.Error, "database error")
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", err.Error()),
		)

		return nil, fmt.Errorf("falha ao listar usuários: %w", err)
	}

	span.SetAttributes(attribute.Int("users.count", len(entities)))
	span.SetStatus(codes.Ok, "")
	return entities, nil
}

// FindByID busca um usuário pelo ID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.UserEntity, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"UserRepository.FindByID",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "users"),
			attribute.String("user.id", id),
		),
	)
	defer span.End()

	var entity model.UserEntity

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "user not found")
			span.SetAttributes(attribute.Bool("user.found", false))
			return nil, repository.ErrUserNotFound
		}

		r.logger.Error("falha ao buscar usuário por id",
			zap.String("id", id),
			zap.Error(err))

		span.SetStatus(codes.Error, "database error")
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", err.Error()),
		)

		return nil, fmt.Errorf("falha ao buscar usuário: %w", err)
	}

	span.SetAttributes(attribute.Bool("user.found", true))
	span.SetStatus(codes.Ok, "")
	return &entity, nil
}

// FindByUsername busca um usuário pelo username exato
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.UserEntity, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"UserRepository.FindByUsername",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "users"),
			attribute.String("user.username", username),
		),
	)
	defer span.End()

	var entity model.UserEntity

	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "user not found")
			span.SetAttributes(attribute.Bool("user.found", false))
			return nil, repository.ErrUserNotFound
		}

		r.logger.Error("falha ao buscar usuário por username",
			zap.String("username", username),
			zap.Error(err))

		span.SetStatus(codes.Error, "database error")
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", err.Error()),
		)

		return nil, fmt.Errorf("falha ao buscar usuário: %w", err)
	}

	span.SetAttributes(attribute.Bool("user.found", true))
	span.SetStatus(codes.Ok, "")
	return &entity, nil
}

// FindByUsernameOrEmail busca um usuário que colida com o username OU o
// email candidatos, em uma única consulta. Ausência não é erro aqui.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.UserEntity, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"UserRepository.FindByUsernameOrEmail",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "users"),
			attribute.String("user.username", username),
		),
	)
	defer span.End()

	var entity model.UserEntity

	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetAttributes(attribute.Bool("user.found", false))
			span.SetStatus(codes.Ok, "")
			return nil, nil
		}

		r.logger.Error("falha ao verificar colisão de username/email",
			zap.String("username", username),
			zap.Error(err))

		span.SetStatus(codes.Error, "database error")
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", err.Error()),
		)

		return nil, fmt.Errorf("falha ao verificar usuário existente: %w", err)
	}

	span.SetAttributes(attribute.Bool("user.found", true))
	span.SetStatus(codes.Ok, "")
	return &entity, nil
}

// Update persiste a entidade inteira
func (r *UserRepository) Update(ctx context.Context, entity *model.UserEntity) error {
	ctx, span := r.tracer.Start(
		ctx,
		"UserRepository.Update",
		trace.WithAttributes(
			attribute.String("db.operation", "update"),
			attribute.String("db.table", "users"),
			attribute.String("user.id", entity.ID),
		),
	)
	defer span.End()

	result := r.db.WithContext(ctx).Save(entity)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			// Não há re-checagem de unicidade no update: a constraint do
			// banco é a única barreira contra colisões aqui
			span.SetStatus(codes.Error, "unique constraint violation")
			return repository.ErrUserConflict
		}

		r.logger.Error("falha ao atualizar usuário",
			zap.String("id", entity.ID),
			zap.Error(result.Error))

		span.SetStatus(codes.Error, "database error")
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", result.Error.Error()),
		)

		return fmt.Errorf("falha ao atualizar usuário: %w", result.Error)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", result.RowsAffected))
	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete remove permanentemente o usuário pelo ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(
		ctx,
		"UserRepository.Delete",
		trace.WithAttributes(
			attribute.String("db.operation", "delete"),
			attribute.String("db.table", "users"),
			attribute.String("user.id", id),
		),
	)
	defer span.End()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserEntity{})
	if result.Error != nil {
		r.logger.Error("falha ao excluir usuário",
			zap.String("id", id),
			zap.Error(result.Error))

		span.SetStatus(codes.Error, "database error")
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", result.Error.Error()),
		)

		return fmt.Errorf("falha ao excluir usuário: %w", result.Error)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", result.RowsAffected))

	if result.RowsAffected == 0 {
		span.SetStatus(codes.Error, "no rows affected")
		span.SetAttributes(attribute.Bool("user.found", false))
		return repository.ErrUserNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DiagnoseUserStorage monta um relatório de diagnóstico para um usuário
func (r *UserRepository) DiagnoseUserStorage(ctx context.Context, username string) (string, error) {
	var entity model.UserEntity
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&entity).Error; err != nil {
		return "", fmt.Errorf("erro ao buscar usuário: %w", err)
	}

	report := fmt.Sprintf(
		"Diagnóstico para usuário: %s\n"+
			"----------------------------\n"+
			"ID: %s\n"+
			"Tipo de banco: %s\n"+
			"Tamanho do hash de senha: %d\n"+
			"Username: %s\n"+
			"Email: %s\n"+
			"Role: %s\n"+
			"CreatedAt: %v\n",
		username,
		entity.ID,
		r.db.Dialector.Name(),
		len(entity.Password),
		entity.Username,
		entity.Email,
		entity.Role,
		entity.CreatedAt,
	)

	return report, nil
}

// isUniqueViolation identifica violações de constraint de unicidade.
// gorm.ErrDuplicatedKey cobre os drivers com tradução de erro; os
// sufixos de mensagem cobrem os demais.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "unique constraint")
}
