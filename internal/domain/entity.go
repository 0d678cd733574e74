package domain

import (
	"time"
)

type Tier string

const (
	TierFree     Tier = "free"
	TierPro      Tier = "pro"
	TierEngineer Tier = "engineer"
)

func (t Tier) String() string { return string(t) }

func (t Tier) Valid() bool {
	return t == TierFree || t == TierPro || t == TierEngineer
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) String() string { return string(r) }

type User struct {
	ID                 string
	Email              string
	Username           string
	PasswordHash       string
	Tier               Tier
	SubscriptionStatus string
	SubscriptionID     string
	PaymentProvider    string
	UsageCount         int64
	CreatedAt          time.Time
}

// Conversation is the aggregate root: messages hang off it, ownership is
// checked against it.
type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetTitle derives a title from the first message, rune-truncated.
func (c *Conversation) SetTitle(content string) {
	const maxLen = 50
	runes := []rune(content)
	if len(runes) > maxLen {
		c.Title = string(runes[:maxLen])
	} else {
		c.Title = content
	}
}

type Message struct {
	ID             string
	ConversationID string
	UserID         string
	Role           Role
	Content        string
	CreatedAt      time.Time
}

func (m *Message) IsUser() bool {
	return m.Role == RoleUser
}

// UsageLog is an append-only audit row, never read back by the gate.
type UsageLog struct {
	ID         string
	UserID     string
	ActionType string
	Model      string
	Provider   string
	Tier       Tier
	Metadata   map[string]any
	CreatedAt  time.Time
}

// ErrorLog is a client-reported error, ingested for triage.
type ErrorLog struct {
	ID         string
	UserID     string
	Message    string
	Path       string
	Component  string
	Severity   string
	StackTrace string
	Context    map[string]any
	OccurredAt time.Time
	CreatedAt  time.Time
}

type Subscription struct {
	ID                 string
	UserID             string
	SubscriptionID     string
	Provider           string
	Status             string
	PlanID             string
	CancelAtPeriodEnd  bool
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
}

// ChatMessage is one prompt entry sent upstream.
type ChatMessage struct {
	Role    Role
	Content string
}

// GeneratedToken is one element of a model's token stream. Err is carried
// in-band so a consumer sees it in emission order.
type GeneratedToken struct {
	Content string
	IsLast  bool
	Err     error
}

// ModelRoute is the router's output: a concrete upstream handle plus the
// system prompt. Provider names the upstream API family, for audit logging.
type ModelRoute struct {
	Name         string
	Model        string
	Provider     string
	SystemPrompt string
}

type InferenceRequest struct {
	Model       string
	Provider    string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float32
}

// CodeProgressEvent is the tagged payload published to a conversation's
// fan-out topic while code is being generated.
type CodeProgressEvent struct {
	Kind     string `json:"kind"`
	Language string `json:"language"`
	Code     string `json:"code"`
	Complete bool   `json:"isComplete"`
}

const EventKindProgress = "progress"
