package moderation

// ChatKind is the type of chat a message was posted in.
type ChatKind string

const (
	ChatPrivate    ChatKind = "private"
	ChatGroup      ChatKind = "group"
	ChatSupergroup ChatKind = "supergroup"
	ChatChannel    ChatKind = "channel"
)

// EntityKind is the type of a formatting entity inside message text.
type EntityKind string

const (
	EntityBotCommand EntityKind = "bot_command"
	EntityURL        EntityKind = "url"
	EntityTextLink   EntityKind = "text_link"
)

// UserRef identifies the sender of a message.
type UserRef struct {
	ID          int64
	DisplayName string
	Username    string // empty when the user has none
	IsBot       bool
}

// ChatRef identifies the chat a message belongs to.
type ChatRef struct {
	ID    int64
	Title string
	Kind  ChatKind
}

// IsGroup reports whether the chat is a group or supergroup.
func (c ChatRef) IsGroup() bool {
	return c.Kind == ChatGroup || c.Kind == ChatSupergroup
}

// Entity is a span of message text. Offset and Length are in UTF-16 code
// units, as delivered by the platform.
type Entity struct {
	Kind   EntityKind
	Offset int
	Length int
	URL    string // set for text links
}

// Message is an immutable snapshot of one inbound message.
type Message struct {
	ID       int
	Text     string
	Sender   UserRef
	Chat     ChatRef
	Entities []Entity
}

// HasText reports whether the message carries text content.
func (m Message) HasText() bool {
	return m.Text != ""
}
