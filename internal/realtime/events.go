package realtime

import (
	"encoding/json"
	"log"

	"github.com/mtsuzuki/todo-collab-api/internal/models"
)

// TodoEvent is the outbound frame sent to a user's todo group after
// any successful mutation, regardless of which surface performed it.
type TodoEvent struct {
	Type   string       `json:"type"`
	Action string       `json:"action"`
	Todo   *models.Todo `json:"todo"`
}

// NotificationEvent is the outbound frame on the notification group.
type NotificationEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PublishTodo broadcasts a todo mutation to the owner's sessions. It
// satisfies the services.Publisher interface.
func (h *Hub) PublishTodo(ownerID uint64, action string, todo *models.Todo) {
	data, err := json.Marshal(TodoEvent{Type: "todo", Action: action, Todo: todo})
	if err != nil {
		log.Printf("realtime: failed to encode todo event: %v", err)
		return
	}
	h.Broadcast(TodoGroup(ownerID), data)
}

// PublishNotification broadcasts a plain notification to a user's
// sessions.
func (h *Hub) PublishNotification(userID uint64, message string) {
	data, err := json.Marshal(NotificationEvent{Type: "notification", Message: message})
	if err != nil {
		log.Printf("realtime: failed to encode notification: %v", err)
		return
	}
	h.Broadcast(NotificationGroup(userID), data)
}
