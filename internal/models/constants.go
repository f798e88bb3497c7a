// Package models contains data types and constants for the ssechat stream protocol.
package models

// Endpoints for the chat backend
const (
	// EndpointStream is the default remote endpoint that answers a chat turn
	// with a server-sent-events stream.
	EndpointStream = "https://tspmo-backend.onrender.com/api/brainrot-stream"
)

// Stream framing
const (
	// FrameSeparator delimits two SSE frames.
	FrameSeparator = "\n\n"

	// DataPrefix introduces a data frame carrying a JSON Payload.
	DataPrefix = "data: "

	// EndMarker introduces the frame that terminates a stream normally.
	EndMarker = "event: end"
)

// AssistantModelID is the payload model identifier rendered as the assistant.
// Every other identifier is rendered as the user persona.
const AssistantModelID = "A"

// DefaultGreeting seeds every new conversation.
const DefaultGreeting = "Greetings twin! How can I rizz you today?"

// DefaultHeaders returns the default headers for stream requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "text/event-stream",
		"Cache-Control": "no-cache",
		"User-Agent":    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	}
}
