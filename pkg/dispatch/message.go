package dispatch

// Author identifies the sender of an inbound message.
type Author struct {
	ID  string
	Bot bool // automated account
}

// Message is the inbound event the dispatcher consumes. Adapters map their
// transport's message type onto it.
type Message struct {
	Content   string
	ChannelID string
	GuildID   string // empty outside grouped conversation contexts
	Author    Author
}

// InGuild reports whether the message originated inside a grouped
// conversation context.
func (m *Message) InGuild() bool { return m.GuildID != "" }
