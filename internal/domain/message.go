package domain

import "time"

// Channel identifies which output queue a message belongs to. Ordering is
// guaranteed within a channel only; there is no cross-channel ordering.
type Channel int

const (
	// ChannelNarration carries the player-facing story text.
	ChannelNarration Channel = iota
	// ChannelDebug carries diagnostics, status lines, and system messages.
	ChannelDebug
)

func (c Channel) String() string {
	switch c {
	case ChannelNarration:
		return "narration"
	case ChannelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Kind is the closed set of message kinds delivered to observers.
type Kind string

const (
	KindNarration Kind = "narration"
	KindDebug     Kind = "debug"
	KindSystem    Kind = "system"
	KindError     Kind = "error"
	KindInfo      Kind = "info"
	KindUserInput Kind = "user-input"
)

// Message is a single classified unit of engine output. Messages are
// immutable once created; ownership passes to the queue they are pushed on.
type Message struct {
	Channel   Channel
	Kind      Kind
	Content   string
	Timestamp time.Time
	IsError   bool
}

func NewNarration(content string) Message {
	return Message{
		Channel:   ChannelNarration,
		Kind:      KindNarration,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func NewDebug(content string, isError bool) Message {
	return Message{
		Channel:   ChannelDebug,
		Kind:      KindDebug,
		Content:   content,
		Timestamp: time.Now().UTC(),
		IsError:   isError,
	}
}

func NewInfo(content string) Message {
	return Message{
		Channel:   ChannelNarration,
		Kind:      KindInfo,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewDebugInfo is an informational message on the debug channel, used for
// run outcome reporting.
func NewDebugInfo(content string) Message {
	return Message{
		Channel:   ChannelDebug,
		Kind:      KindInfo,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func NewSystem(content string) Message {
	return Message{
		Channel:   ChannelDebug,
		Kind:      KindSystem,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func NewError(content string) Message {
	return Message{
		Channel:   ChannelDebug,
		Kind:      KindError,
		Content:   content,
		Timestamp: time.Now().UTC(),
		IsError:   true,
	}
}

func NewUserInput(content string) Message {
	return Message{
		Channel:   ChannelNarration,
		Kind:      KindUserInput,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}
