package http

import (
	"net/http"
	"strconv"

	"github.com/diillson/user-service-go/internal/app/user"
	"github.com/diillson/user-service-go/internal/domain/model"
	"github.com/diillson/user-service-go/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler expõe as operações de usuários sobre HTTP
type UserHandler struct {
	service *user.Service
	logger  *zap.Logger
	metrics *metrics.APIMetrics
}

// NewUserHandler cria um novo handler de usuários
func NewUserHandler(service *user.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// SetMetrics configura as métricas do handler
func (h *UserHandler) SetMetrics(m *metrics.APIMetrics) {
	h.metrics = m
}

// UserRequest é o payload de criação e de substituição de um usuário.
// Falhas de schema (campo ausente, email malformado, role fora da
// enumeração) são barradas aqui, antes de qualquer lógica de domínio.
type UserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin user"`
}

// CreateUser trata POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	created, err := h.service.CreateUser(c.Request.Context(), &model.UserAccount{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(c, err, "create")
		return
	}

	h.operation("create")
	c.JSON(http.StatusCreated, created)
}

// ListUsers trata GET /users. Com o parâmetro username presente, a
// requisição vira uma busca exata por username; caso contrário é uma
// listagem paginada por limit/offset.
func (h *UserHandler) ListUsers(c *gin.Context) {
	if username := c.Query("username"); username != "" {
		found, err := h.service.GetUserByUsername(c.Request.Context(), username)
		if err != nil {
			h.respondError(c, err, "get")
			return
		}
		c.JSON(http.StatusOK, found)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(user.DefaultListLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Dados inválidos: limit deve ser um inteiro não negativo"})
		return
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Dados inválidos: offset deve ser um inteiro não negativo"})
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err, "list")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser trata GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	found, err := h.service.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "get")
		return
	}

	c.JSON(http.StatusOK, found)
}

// UpdateUser trata PUT /users/:id com o payload de substituição completo
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	updated, err := h.service.UpdateUser(c.Request.Context(), c.Param("id"), &model.UserAccount{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(c, err, "update")
		return
	}

	h.operation("update")
	c.JSON(http.StatusOK, updated)
}

// DeleteUser trata DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "delete")
		return
	}

	h.operation("delete")
	// Typo preservado: clientes existentes dependem da string exata
	c.JSON(http.StatusOK, gin.H{"message": "User successfuly deleted"})
}

// respondError traduz erros de domínio para o status/corpo do contrato
func (h *UserHandler) respondError(c *gin.Context, err error, operation string) {
	apiErr := FromDomain(err)

	if apiErr.Code >= http.StatusInternalServerError {
		h.logger.Error("erro interno ao processar requisição",
			zap.String("operation", operation),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	if h.metrics != nil {
		h.metrics.UserOperation(operation, "error")
	}

	c.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
}

func (h *UserHandler) operation(name string) {
	if h.metrics != nil {
		h.metrics.UserOperation(name, "success")
	}
}
