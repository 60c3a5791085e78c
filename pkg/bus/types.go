package bus

// Command is one parsed chat command accepted by the pipeline.
// Immutable once constructed; owned by the queue until dequeued.
type Command struct {
	Group   int64    `json:"group"` // source group id, 0 for private chats
	Sender  int64    `json:"sender"`
	Argv    []string `json:"argv"`    // Argv[0] is the command name, prefix stripped
	Targets []int64  `json:"targets"` // mentioned users, broadcast mentions excluded
}

// Private reports whether the command originated in a private chat.
func (c Command) Private() bool {
	return c.Group == 0
}

// Reply carries handler output back toward the gateway.
type Reply struct {
	Group int64  `json:"group"` // destination group, 0 for a private reply
	User  int64  `json:"user"`  // original sender; mention target for group replies
	Text  string `json:"text"`
}
