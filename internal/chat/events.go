package chat

// Typed events delivered by the chat transport. The transport owns
// message parsing and command routing; the machine only sees these.

// DocumentEvent carries an uploaded document and its declared metadata.
type DocumentEvent struct {
	ConversationID string
	SenderID       string
	Filename       string
	Size           int64
	Data           []byte
}

// TextEvent carries a plain text message.
type TextEvent struct {
	ConversationID string
	Text           string
}

// CancelEvent aborts whatever the conversation is doing.
type CancelEvent struct {
	ConversationID string
}

// OpenAction is a labeled link the transport renders as an open button.
type OpenAction struct {
	Label string
	URL   string
}

// Reply is the outbound message produced by the machine.
type Reply struct {
	Text    string
	Actions []OpenAction
}
