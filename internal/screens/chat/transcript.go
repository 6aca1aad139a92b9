package chat

// Role identifies who wrote a transcript entry.
type Role int

const (
	RoleUser Role = iota
	RoleBot
)

// Entry is one chat message.
type Entry struct {
	Role Role
	Text string

	// Pending marks a bot placeholder still waiting for its reply.
	Pending bool
}

// Transcript is the conversation history shared by every chat screen
// opened during one run of the client. It is only touched from the UI
// goroutine.
type Transcript struct {
	entries []Entry
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Add appends an entry and returns its index.
func (t *Transcript) Add(e Entry) int {
	t.entries = append(t.entries, e)
	return len(t.entries) - 1
}

// Resolve replaces the pending entry at i with its final text.
func (t *Transcript) Resolve(i int, text string) {
	if i < 0 || i >= len(t.entries) {
		return
	}
	t.entries[i].Text = text
	t.entries[i].Pending = false
}

// Entries returns the transcript in order. The slice must not be modified.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}
