package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID = "user_id"
	ContextKeyTodo   = "todo"
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	SessionName       = "todo_session"
)

// DefaultCategoryColor is assigned to categories created implicitly
// during import.
const DefaultCategoryColor = "#007bff"

// MaxAISuggestions caps the number of todos a single suggestion request
// may produce.
const MaxAISuggestions = 20
