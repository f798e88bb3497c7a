// Package chat holds the conversation and the controller that drives one
// streamed turn at a time.
package chat

import (
	"sync"

	"github.com/diogo/ssechat/internal/models"
)

// Conversation is the ordered list of messages shown to the user.
// It only grows, apart from Reset. Safe for concurrent use.
type Conversation struct {
	mu       sync.RWMutex
	greeting string
	messages []models.Message
}

// NewConversation creates a conversation seeded with an assistant greeting.
// An empty greeting leaves the conversation empty.
func NewConversation(greeting string) *Conversation {
	c := &Conversation{greeting: greeting}
	c.seed()
	return c
}

func (c *Conversation) seed() {
	c.messages = nil
	if c.greeting != "" {
		c.messages = append(c.messages, models.NewAssistantMessage(c.greeting))
	}
}

// AppendUserMessage appends the text typed by the user
func (c *Conversation) AppendUserMessage(text string) models.Message {
	return c.AppendStreamedMessage(models.RoleUser, text)
}

// AppendStreamedMessage appends one message decoded from the stream
func (c *Conversation) AppendStreamedMessage(role models.Role, content string) models.Message {
	msg := models.Message{Role: role, Content: content}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	return msg
}

// Messages returns a copy of the messages in display order
func (c *Conversation) Messages() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recent message with the given role
func (c *Conversation) Last(role models.Role) (models.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i], true
		}
	}
	return models.Message{}, false
}

// Reset drops every message and restores the greeting
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seed()
}
