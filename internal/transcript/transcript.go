// Package transcript holds the in-memory message list of the open chat.
//
// The list is append-only from the outside: history is loaded once, live
// messages are appended, and the remaining live events edit messages in
// place without reordering them. Nothing here performs I/O.
package transcript

import (
	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/live"
)

// Transcript is the ordered message list of one chat.
type Transcript struct {
	chatID   int
	messages []api.Message
	index    map[int]int
}

// New returns an empty transcript for chatID.
func New(chatID int) *Transcript {
	return &Transcript{chatID: chatID, index: make(map[int]int)}
}

// ChatID returns the chat this transcript belongs to.
func (t *Transcript) ChatID() int {
	return t.chatID
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the messages, oldest first.
func (t *Transcript) Messages() []api.Message {
	out := make([]api.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// At returns the message at position i.
func (t *Transcript) At(i int) (api.Message, bool) {
	if i < 0 || i >= len(t.messages) {
		return api.Message{}, false
	}
	return t.messages[i], true
}

// Find returns the message with the given id.
func (t *Transcript) Find(id int) (api.Message, bool) {
	i, ok := t.index[id]
	if !ok {
		return api.Message{}, false
	}
	return t.messages[i], true
}

// Load replaces the contents with a history fetch, kept in the given order.
func (t *Transcript) Load(history []api.Message) {
	t.messages = make([]api.Message, 0, len(history))
	t.index = make(map[int]int, len(history))
	for _, m := range history {
		t.append(m)
	}
}

func (t *Transcript) append(m api.Message) {
	t.messages = append(t.messages, m)
	if m.ID != 0 {
		t.index[m.ID] = len(t.messages) - 1
	}
}

func (t *Transcript) reindex() {
	t.index = make(map[int]int, len(t.messages))
	for i, m := range t.messages {
		if m.ID != 0 {
			t.index[m.ID] = i
		}
	}
}

// Append adds a message at the end. Messages already present are appended
// again; history and live events are not deduplicated.
func (t *Transcript) Append(m api.Message) {
	t.append(m)
}

// SetReactions replaces the reactions of one message. It reports whether the
// message was found.
func (t *Transcript) SetReactions(id int, reactions []api.Reaction) bool {
	i, ok := t.index[id]
	if !ok {
		return false
	}
	t.messages[i].Reactions = append([]api.Reaction(nil), reactions...)
	return true
}

// MarkRead sets the listed messages to read. Unknown ids are ignored.
func (t *Transcript) MarkRead(ids []int) int {
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	changed := 0
	for i := range t.messages {
		if _, ok := want[t.messages[i].ID]; !ok {
			continue
		}
		if t.messages[i].Status != api.StatusRead {
			t.messages[i].Status = api.StatusRead
			changed++
		}
	}
	return changed
}

// Delete removes the message with id. It is a no-op when id is absent.
func (t *Transcript) Delete(id int) bool {
	i, ok := t.index[id]
	if !ok {
		return false
	}
	t.messages = append(t.messages[:i], t.messages[i+1:]...)
	t.reindex()
	return true
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.messages = nil
	t.index = make(map[int]int)
}

// AllRead reports whether every message is read. An empty transcript is not.
func (t *Transcript) AllRead() bool {
	if len(t.messages) == 0 {
		return false
	}
	for _, m := range t.messages {
		if m.Status != api.StatusRead {
			return false
		}
	}
	return true
}

// Effect describes what Apply did, for the caller to follow up on.
type Effect struct {
	// Changed is true when the visible transcript changed.
	Changed bool
	// Appended is the message that was added, if any.
	Appended *api.Message
	// Notice is text to surface to the user.
	Notice string
}

// Apply folds one live event into the transcript.
func (t *Transcript) Apply(ev live.Event) Effect {
	switch e := ev.(type) {
	case live.NewMessage:
		t.append(e.Message)
		m := e.Message
		return Effect{Changed: true, Appended: &m}
	case live.ReactionUpdate:
		return Effect{Changed: t.SetReactions(e.MessageID, e.Reactions)}
	case live.ReadReceipts:
		return Effect{Changed: t.MarkRead(e.MessageIDs) > 0}
	case live.HistoryCleared:
		notice := e.Notice
		if notice == "" {
			notice = "Chat history was cleared"
		}
		t.Clear()
		return Effect{Changed: true, Notice: notice}
	case live.MessageDeleted:
		return Effect{Changed: t.Delete(e.MessageID)}
	}
	return Effect{}
}
