package models

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire name of the role
func (r Role) String() string {
	return string(r)
}

// Message represents a chat message for display.
// Messages are immutable once created; position in the conversation is their only identity.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a message authored by the user
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a message authored by the assistant
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// IsUser reports whether the message was authored by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Payload is the JSON body carried by a data frame
type Payload struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// RoleForModel maps a payload model identifier to a display role
func RoleForModel(model string) Role {
	if model == AssistantModelID {
		return RoleAssistant
	}
	return RoleUser
}

// Message converts the payload to the message it appends to a conversation
func (p Payload) Message() Message {
	return Message{
		Role:    RoleForModel(p.Model),
		Content: p.Text,
	}
}

// StreamRequest is the JSON body posted to open a stream
type StreamRequest struct {
	Message string `json:"message"`
}
