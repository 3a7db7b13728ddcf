package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/mtsuzuki/todo-collab-api/internal/constants"
	"github.com/mtsuzuki/todo-collab-api/internal/database"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
	"github.com/mtsuzuki/todo-collab-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ShareHandlerTestSuite defines the test suite for ShareHandler
type ShareHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *ShareHandler
}

// SetupTest runs before each test
func (suite *ShareHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Todo{},
		&models.TodoAttachment{},
		&models.TodoShare{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	todoRepo := repository.NewTodoRepository(suite.db)
	shareRepo := repository.NewShareRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	authorizer := services.NewAuthorizer(shareRepo)
	shareService := services.NewShareService(todoRepo, shareRepo, userRepo, authorizer)
	suite.handler = NewShareHandler(shareService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *ShareHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ShareHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *ShareHandlerTestSuite) createTestTodo(title string, ownerID uint64) *models.Todo {
	todo := &models.Todo{
		Title:    title,
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
		UserID:   ownerID,
	}
	suite.db.Create(todo)
	return todo
}

func (suite *ShareHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *ShareHandlerTestSuite) setTodoContext(c *gin.Context, todo models.Todo) {
	c.Set(constants.ContextKeyTodo, todo)
}

// TestShareTodo_Success tests sharing a todo with another user
func (suite *ShareHandlerTestSuite) TestShareTodo_Success() {
	owner := suite.createTestUser("alice")
	target := suite.createTestUser("bob")
	todo := suite.createTestTodo("Shared Todo", owner.ID)

	requestBody := map[string]interface{}{
		"username": target.Username,
		"can_edit": true,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, owner.ID)
	suite.setTodoContext(c, *todo)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var share models.TodoShare
	err := suite.db.Where("todo_id = ? AND shared_with_id = ?", todo.ID, target.ID).First(&share).Error
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), share.CanEdit)

	// The informational flag on the todo follows the grants
	var reloaded models.Todo
	suite.db.First(&reloaded, todo.ID)
	assert.True(suite.T(), reloaded.IsShared)
}

// TestShareTodo_UpsertUpdatesCanEdit tests that re-sharing updates the grant in place
func (suite *ShareHandlerTestSuite) TestShareTodo_UpsertUpdatesCanEdit() {
	owner := suite.createTestUser("alice")
	target := suite.createTestUser("bob")
	todo := suite.createTestTodo("Shared Todo", owner.ID)

	for _, canEdit := range []bool{false, true} {
		requestBody := map[string]interface{}{
			"username": target.Username,
			"can_edit": canEdit,
		}
		body, _ := json.Marshal(requestBody)

		c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, owner.ID)
		suite.setTodoContext(c, *todo)

		suite.handler.ShareTodo(c)
		assert.Equal(suite.T(), http.StatusOK, w.Code)
	}

	var count int64
	suite.db.Model(&models.TodoShare{}).Where("todo_id = ?", todo.ID).Count(&count)
	assert.Equal(suite.T(), int64(1), count)

	var share models.TodoShare
	err := suite.db.Where("todo_id = ? AND shared_with_id = ?", todo.ID, target.ID).First(&share).Error
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), share.CanEdit)
}

// TestShareTodo_NotOwner tests that a grantee cannot re-share
func (suite *ShareHandlerTestSuite) TestShareTodo_NotOwner() {
	owner := suite.createTestUser("alice")
	editor := suite.createTestUser("bob")
	third := suite.createTestUser("carol")
	todo := suite.createTestTodo("Shared Todo", owner.ID)
	suite.db.Create(&models.TodoShare{
		TodoID:       todo.ID,
		SharedWithID: editor.ID,
		SharedByID:   owner.ID,
		CanEdit:      true,
	})

	requestBody := map[string]interface{}{
		"username": third.Username,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, editor.ID)
	suite.setTodoContext(c, *todo)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestShareTodo_UnknownUser tests sharing with a nonexistent username
func (suite *ShareHandlerTestSuite) TestShareTodo_UnknownUser() {
	owner := suite.createTestUser("alice")
	todo := suite.createTestTodo("Shared Todo", owner.ID)

	requestBody := map[string]interface{}{
		"username": "nobody",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, owner.ID)
	suite.setTodoContext(c, *todo)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestShareTodo_WithSelf tests sharing a todo with its owner
func (suite *ShareHandlerTestSuite) TestShareTodo_WithSelf() {
	owner := suite.createTestUser("alice")
	todo := suite.createTestTodo("Shared Todo", owner.ID)

	requestBody := map[string]interface{}{
		"username": owner.Username,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, owner.ID)
	suite.setTodoContext(c, *todo)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUnshareTodo_Success tests revoking a grant
func (suite *ShareHandlerTestSuite) TestUnshareTodo_Success() {
	owner := suite.createTestUser("alice")
	target := suite.createTestUser("bob")
	todo := suite.createTestTodo("Shared Todo", owner.ID)
	suite.db.Create(&models.TodoShare{
		TodoID:       todo.ID,
		SharedWithID: target.ID,
		SharedByID:   owner.ID,
	})
	suite.db.Model(todo).Update("is_shared", true)

	requestBody := map[string]interface{}{
		"username": target.Username,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("DELETE", "/api/todos/1/share", body, owner.ID)
	suite.setTodoContext(c, *todo)

	suite.handler.UnshareTodo(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.TodoShare{}).Where("todo_id = ?", todo.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)

	// Last grant revoked clears the informational flag
	var reloaded models.Todo
	suite.db.First(&reloaded, todo.ID)
	assert.False(suite.T(), reloaded.IsShared)
}

// TestUnshareTodo_NoGrant tests revoking a grant that does not exist
func (suite *ShareHandlerTestSuite) TestUnshareTodo_NoGrant() {
	owner := suite.createTestUser("alice")
	target := suite.createTestUser("bob")
	todo := suite.createTestTodo("Shared Todo", owner.ID)

	requestBody := map[string]interface{}{
		"username": target.Username,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("DELETE", "/api/todos/1/share", body, owner.ID)
	suite.setTodoContext(c, *todo)

	suite.handler.UnshareTodo(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestListShares_Success tests listing grants as the owner
func (suite *ShareHandlerTestSuite) TestListShares_Success() {
	owner := suite.createTestUser("alice")
	target := suite.createTestUser("bob")
	todo := suite.createTestTodo("Shared Todo", owner.ID)
	suite.db.Create(&models.TodoShare{
		TodoID:       todo.ID,
		SharedWithID: target.ID,
		SharedByID:   owner.ID,
		CanEdit:      true,
	})

	c, w := suite.createAuthContext("GET", "/api/todos/1/shares", nil, owner.ID)
	suite.setTodoContext(c, *todo)

	suite.handler.ListShares(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	shares := response["shares"].([]interface{})
	assert.Len(suite.T(), shares, 1)

	first := shares[0].(map[string]interface{})
	sharedWith := first["shared_with"].(map[string]interface{})
	assert.Equal(suite.T(), target.Username, sharedWith["username"])
	assert.Equal(suite.T(), true, first["can_edit"])
}

// TestListShares_NotOwner tests listing grants as a grantee
func (suite *ShareHandlerTestSuite) TestListShares_NotOwner() {
	owner := suite.createTestUser("alice")
	target := suite.createTestUser("bob")
	todo := suite.createTestTodo("Shared Todo", owner.ID)
	suite.db.Create(&models.TodoShare{
		TodoID:       todo.ID,
		SharedWithID: target.ID,
		SharedByID:   owner.ID,
	})

	c, w := suite.createAuthContext("GET", "/api/todos/1/shares", nil, target.ID)
	suite.setTodoContext(c, *todo)

	suite.handler.ListShares(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestSuite runs the test suite
func TestShareHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ShareHandlerTestSuite))
}
