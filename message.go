package dataagent

import (
	"encoding/json"
	"strings"
	"time"
)

// Message is a sealed interface representing a message in the dialogue with
// the remote model. Role() returns the message's role without requiring a
// type switch.
type Message interface {
	isMessage()
	Role() Role
}

// UserMessage represents text sent to the model on the user's side of the
// dialogue: the agent context, the user's request, driver notes and the
// summary prompt.
type UserMessage struct {
	Content   []ContentBlock
	Timestamp time.Time
}

func (UserMessage) isMessage() {}

// Role returns RoleUser.
func (UserMessage) Role() Role { return RoleUser }

// AssistantMessage represents a message from the model.
type AssistantMessage struct {
	Content       []ContentBlock
	StopReason    StopReason
	RawStopReason string
	Usage         Usage
	Timestamp     time.Time
}

func (AssistantMessage) isMessage() {}

// Role returns RoleAssistant.
func (AssistantMessage) Role() Role { return RoleAssistant }

// Text concatenates the message's text blocks.
func (m AssistantMessage) Text() string {
	var b strings.Builder
	for _, c := range m.Content {
		if tb, ok := c.(TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool calls in the order the model emitted them.
func (m AssistantMessage) ToolCalls() []ToolCallBlock {
	var calls []ToolCallBlock
	for _, c := range m.Content {
		if tc, ok := c.(ToolCallBlock); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// ToolResultMessage is the labeled tool response returned to the model.
type ToolResultMessage struct {
	ToolCallID string
	ToolName   string
	Content    string
	IsError    bool
	Timestamp  time.Time
}

func (ToolResultMessage) isMessage() {}

// Role returns RoleToolResult.
func (ToolResultMessage) Role() Role { return RoleToolResult }

// ContentBlock is a sealed interface representing a block of content.
type ContentBlock interface {
	contentBlock()
}

// TextBlock contains text content.
type TextBlock struct {
	Text string
}

func (TextBlock) contentBlock() {}

// ToolCallBlock represents a tool call requested by the model.
type ToolCallBlock struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

func (ToolCallBlock) contentBlock() {}

// NewUserText builds a UserMessage from one or more text fragments, one
// TextBlock per non-empty fragment.
func NewUserText(texts ...string) UserMessage {
	msg := UserMessage{Timestamp: time.Now()}
	for _, t := range texts {
		if t == "" {
			continue
		}
		msg.Content = append(msg.Content, TextBlock{Text: t})
	}
	return msg
}

// Interface compliance checks.
var (
	_ Message = UserMessage{}
	_ Message = AssistantMessage{}
	_ Message = ToolResultMessage{}

	_ ContentBlock = TextBlock{}
	_ ContentBlock = ToolCallBlock{}
)
