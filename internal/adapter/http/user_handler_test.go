package http_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/diillson/user-service-go/internal/adapter/database"
	handlerhttp "github.com/diillson/user-service-go/internal/adapter/http"
	"github.com/diillson/user-service-go/internal/app/user"
	"github.com/diillson/user-service-go/internal/domain/model"
	"github.com/diillson/user-service-go/internal/testutils"
	"github.com/diillson/user-service-go/pkg/cache"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupUserAPI monta a API completa sobre um SQLite em memória
func setupUserAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	logger := testutils.TestLogger(t)
	db := testutils.SetupTestDB(t)

	repo := database.NewUserRepository(db, logger)
	memCache := cache.NewMemoryCache(time.Minute, 2*time.Minute, nil, logger)
	service := user.NewService(repo, memCache, logger)
	handler := handlerhttp.NewUserHandler(service, logger)

	router := testutils.SetupTestRouter(t)
	users := router.Group("/users")
	{
		users.POST("", handler.CreateUser)
		users.GET("", handler.ListUsers)
		users.GET("/:id", handler.GetUser)
		users.PUT("/:id", handler.UpdateUser)
		users.DELETE("/:id", handler.DeleteUser)
	}

	return router, db
}

func createUser(t *testing.T, router *gin.Engine, payload map[string]string) model.User {
	resp := testutils.MakeRequest(t, router, "POST", "/users", payload, nil)
	testutils.RequireHTTPStatus(t, resp, 201)

	var created model.User
	testutils.ParseResponse(t, resp, &created)
	return created
}

func TestUserHandler_CreateUser(t *testing.T) {
	t.Run("creates user and returns public projection", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		payload := testutils.UserPayload("Maria Silva", "maria@example.com", "maria", "s3cret", "user")
		resp := testutils.MakeRequest(t, router, "POST", "/users", payload, nil)

		testutils.RequireHTTPStatus(t, resp, 201)
		testutils.RequireJSONContentType(t, resp)

		var body map[string]interface{}
		testutils.ParseResponse(t, resp, &body)

		assert.Equal(t, "maria", body["username"])
		assert.Equal(t, "maria@example.com", body["email"])
		assert.Equal(t, "user", body["role"])
		require.NotEmpty(t, body["id"])
		_, err := uuid.Parse(body["id"].(string))
		assert.NoError(t, err)

		// The projection never leaks password or name
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "name")
	})

	t.Run("never persists the plaintext password", func(t *testing.T) {
		router, db := setupUserAPI(t)

		created := createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		var entity model.UserEntity
		require.NoError(t, db.Where("id = ?", created.ID).First(&entity).Error)
		assert.NotEqual(t, "s3cret", entity.Password)
		assert.NotEmpty(t, entity.Password)
	})

	t.Run("rejects duplicated username", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		// same username, different email
		resp := testutils.MakeRequest(t, router, "POST", "/users",
			testutils.UserPayload("Outra Maria", "other@example.com", "maria", "s3cret", "user"), nil)

		testutils.RequireHTTPStatus(t, resp, 400)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "Username already exists", body["error"])
	})

	t.Run("rejects duplicated email", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		// same email, different username
		resp := testutils.MakeRequest(t, router, "POST", "/users",
			testutils.UserPayload("Maria Dois", "maria@example.com", "maria2", "s3cret", "user"), nil)

		testutils.RequireHTTPStatus(t, resp, 400)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "Email already exists", body["error"])
	})

	t.Run("username collision wins when both username and email collide", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		resp := testutils.MakeRequest(t, router, "POST", "/users",
			testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"), nil)

		testutils.RequireHTTPStatus(t, resp, 400)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "Username already exists", body["error"])
	})

	t.Run("rejects role outside the enumeration", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "POST", "/users",
			testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "superuser"), nil)

		testutils.RequireHTTPStatus(t, resp, 422)
	})

	t.Run("rejects missing required field", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		payload := testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user")
		delete(payload, "password")

		resp := testutils.MakeRequest(t, router, "POST", "/users", payload, nil)
		testutils.RequireHTTPStatus(t, resp, 422)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "POST", "/users",
			testutils.UserPayload("Maria", "not-an-email", "maria", "s3cret", "user"), nil)

		testutils.RequireHTTPStatus(t, resp, 422)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "POST", "/users", "{not json", nil)
		testutils.RequireHTTPStatus(t, resp, 422)
	})
}

func TestUserHandler_ListUsers(t *testing.T) {
	t.Run("returns empty list", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "GET", "/users", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		var body map[string][]model.User
		testutils.ParseResponse(t, resp, &body)
		require.Contains(t, body, "users")
		assert.Empty(t, body["users"])
	})

	t.Run("lists users honoring limit and offset", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		for i := 0; i < 3; i++ {
			createUser(t, router, testutils.UserPayload(
				fmt.Sprintf("User %d", i),
				fmt.Sprintf("user%d@example.com", i),
				fmt.Sprintf("user%d", i),
				"s3cret", "user"))
		}

		resp := testutils.MakeRequest(t, router, "GET", "/users?limit=2", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		var body map[string][]model.User
		testutils.ParseResponse(t, resp, &body)
		assert.Len(t, body["users"], 2)

		resp = testutils.MakeRequest(t, router, "GET", "/users?limit=2&offset=2", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 200)
		testutils.ParseResponse(t, resp, &body)
		assert.Len(t, body["users"], 1)
	})

	t.Run("explicit zero limit returns an empty page", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		for i := 0; i < 3; i++ {
			createUser(t, router, testutils.UserPayload(
				fmt.Sprintf("User %d", i),
				fmt.Sprintf("user%d@example.com", i),
				fmt.Sprintf("user%d", i),
				"s3cret", "user"))
		}

		resp := testutils.MakeRequest(t, router, "GET", "/users?limit=0", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		var body map[string][]model.User
		testutils.ParseResponse(t, resp, &body)
		require.Contains(t, body, "users")
		assert.Empty(t, body["users"])
	})

	t.Run("rejects non-numeric pagination", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "GET", "/users?limit=abc", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 422)

		resp = testutils.MakeRequest(t, router, "GET", "/users?offset=-1", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 422)
	})

	t.Run("looks up by username via query parameter", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		created := createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		resp := testutils.MakeRequest(t, router, "GET", "/users?username=maria", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		var found model.User
		testutils.ParseResponse(t, resp, &found)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "maria", found.Username)
	})

	t.Run("username lookup for unknown user returns 404", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "GET", "/users?username=ghost", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 404)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "User not found", body["error"])
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	t.Run("fetches user by id", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		created := createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		resp := testutils.MakeRequest(t, router, "GET", "/users/"+created.ID, nil, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		var found model.User
		testutils.ParseResponse(t, resp, &found)
		assert.Equal(t, created, found)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "GET", "/users/123", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 400)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "User Id is not valid", body["error"])
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "GET", "/users/"+uuid.NewString(), nil, nil)
		testutils.RequireHTTPStatus(t, resp, 404)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "User not found", body["error"])
	})
}

func TestUserHandler_UpdateUser(t *testing.T) {
	t.Run("replaces user fields", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		created := createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		payload := testutils.UserPayload("Maria", "novo@example.com", "maria-nova", "novo-s3cret", "admin")
		resp := testutils.MakeRequest(t, router, "PUT", "/users/"+created.ID, payload, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		var updated model.User
		testutils.ParseResponse(t, resp, &updated)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "maria-nova", updated.Username)
		assert.Equal(t, "novo@example.com", updated.Email)
		assert.Equal(t, "admin", updated.Role)
	})

	t.Run("accepts but never applies the name field", func(t *testing.T) {
		router, db := setupUserAPI(t)

		created := createUser(t, router, testutils.UserPayload("Nome Original", "maria@example.com", "maria", "s3cret", "user"))

		payload := testutils.UserPayload("Nome Novo", "maria@example.com", "maria", "s3cret", "user")
		resp := testutils.MakeRequest(t, router, "PUT", "/users/"+created.ID, payload, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		var entity model.UserEntity
		require.NoError(t, db.Where("id = ?", created.ID).First(&entity).Error)
		assert.Equal(t, "Nome Original", entity.Name)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		payload := testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user")
		resp := testutils.MakeRequest(t, router, "PUT", "/users/123", payload, nil)
		testutils.RequireHTTPStatus(t, resp, 400)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		payload := testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user")
		resp := testutils.MakeRequest(t, router, "PUT", "/users/"+uuid.NewString(), payload, nil)
		testutils.RequireHTTPStatus(t, resp, 404)
	})

	t.Run("rejects invalid payload", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		created := createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		payload := testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "root")
		resp := testutils.MakeRequest(t, router, "PUT", "/users/"+created.ID, payload, nil)
		testutils.RequireHTTPStatus(t, resp, 422)
	})

	t.Run("update into a taken username is rejected by the store", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		createUser(t, router, testutils.UserPayload("A", "a@example.com", "user-a", "s3cret", "user"))
		other := createUser(t, router, testutils.UserPayload("B", "b@example.com", "user-b", "s3cret", "user"))

		payload := testutils.UserPayload("B", "b@example.com", "user-a", "s3cret", "user")
		resp := testutils.MakeRequest(t, router, "PUT", "/users/"+other.ID, payload, nil)

		testutils.RequireHTTPStatus(t, resp, 409)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "User already exists", body["error"])
	})
}

func TestUserHandler_DeleteUser(t *testing.T) {
	t.Run("deletes user and reports the canonical message", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		created := createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		resp := testutils.MakeRequest(t, router, "DELETE", "/users/"+created.ID, nil, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "User successfuly deleted", body["message"])

		// The row is gone
		resp = testutils.MakeRequest(t, router, "GET", "/users/"+created.ID, nil, nil)
		testutils.RequireHTTPStatus(t, resp, 404)
	})

	t.Run("second delete of the same id returns 404", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		created := createUser(t, router, testutils.UserPayload("Maria", "maria@example.com", "maria", "s3cret", "user"))

		resp := testutils.MakeRequest(t, router, "DELETE", "/users/"+created.ID, nil, nil)
		testutils.RequireHTTPStatus(t, resp, 200)

		resp = testutils.MakeRequest(t, router, "DELETE", "/users/"+created.ID, nil, nil)
		testutils.RequireHTTPStatus(t, resp, 404)

		var body map[string]string
		testutils.ParseResponse(t, resp, &body)
		assert.Equal(t, "User not found", body["error"])
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		router, _ := setupUserAPI(t)

		resp := testutils.MakeRequest(t, router, "DELETE", "/users/abc", nil, nil)
		testutils.RequireHTTPStatus(t, resp, 400)
	})
}
