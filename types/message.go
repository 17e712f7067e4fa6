package types

import "time"

// Role is the vendor-neutral role a message is folded into.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Well-known sender ids. Any other sender id is treated as an assistant turn.
const (
	SenderUser   = "user"
	SenderSystem = "system"
)

// MessageStatus is the delivery state tracked by the conversation layer.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusStreaming MessageStatus = "streaming"
	MessageStatusComplete  MessageStatus = "complete"
	MessageStatusError     MessageStatus = "error"
)

// Message is one conversational turn owned by the caller. The client only reads it.
type Message struct {
	ID        string        `json:"id"`
	SenderID  string        `json:"sender_id"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
	Provider  string        `json:"provider,omitempty"`
	Model     string        `json:"model,omitempty"`
	Status    MessageStatus `json:"status,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Role folds the sender id into the three-role vocabulary.
func (m Message) Role() Role {
	switch m.SenderID {
	case SenderUser:
		return RoleUser
	case SenderSystem:
		return RoleSystem
	default:
		return RoleAssistant
	}
}

// NewMessage creates a message stamped with the current time.
func NewMessage(id, senderID, text string) Message {
	return Message{
		ID:        id,
		SenderID:  senderID,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// LLMSettings holds optional generation parameters. A nil field means "unset";
// adapters apply their own defaults and drop fields their vendor does not accept.
type LLMSettings struct {
	Temperature      *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TopP             *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" yaml:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty"`
}

// Float64 returns a pointer to v, for filling LLMSettings.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for filling LLMSettings.
func Int(v int) *int { return &v }

// ProviderCapabilities are static per-provider facts consulted before a call.
type ProviderCapabilities struct {
	SupportsStreaming      bool `json:"supports_streaming"`
	SupportsSystemMessages bool `json:"supports_system_messages"`
	MaxContextLength       int  `json:"max_context_length"`
}

// StreamingResponse is one event of a streamed answer. A stream carries zero
// or more token events followed by exactly one event with Done set.
type StreamingResponse struct {
	Done  bool   `json:"done"`
	Token string `json:"token,omitempty"`
	Err   *Error `json:"error,omitempty"`
}

// StreamingCallbacks receive progress of a streamed SendMessage call.
// OnComplete and OnError are mutually exclusive and called at most once.
type StreamingCallbacks struct {
	OnToken    func(token string)
	OnComplete func(full string)
	OnError    func(err *Error)
}
