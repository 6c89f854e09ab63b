package model

import "time"

// Roles aceitos para um usuário
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User é a projeção pública de um usuário: nunca inclui a senha
// nem os timestamps internos
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserAccount carrega os dados submetidos para criação ou substituição
// de um usuário; Password aqui ainda é o texto claro
type UserAccount struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     string
}

// UserEntity é a representação de banco de dados de um usuário
type UserEntity struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Name      string    `gorm:"not null"`
	Username  string    `gorm:"uniqueIndex;not null;size:50"`
	Password  string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null;size:100"`
	Role      string    `gorm:"default:user;size:20"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName define o nome da tabela
func (UserEntity) TableName() string {
	return "users"
}

// Public retorna a projeção pública da entidade
func (e *UserEntity) Public() *User {
	return &User{
		ID:       e.ID,
		Username: e.Username,
		Email:    e.Email,
		Role:     e.Role,
	}
}

// ValidRole informa se o valor pertence à enumeração de roles
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
