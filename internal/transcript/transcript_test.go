package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/live"
)

func msg(id int, author, content, status string) api.Message {
	return api.Message{ID: id, Author: author, Content: content, Status: status}
}

func ids(t *Transcript) []int {
	var out []int
	for _, m := range t.Messages() {
		out = append(out, m.ID)
	}
	return out
}

func seeded() *Transcript {
	tr := New(1)
	tr.Load([]api.Message{
		msg(1, "alice", "hi", api.StatusUnread),
		msg(2, "bob", "hey", api.StatusUnread),
		msg(3, "alice", "how are you", api.StatusRead),
	})
	return tr
}

func TestLoad_KeepsOrder(t *testing.T) {
	tr := seeded()
	assert.Equal(t, 1, tr.ChatID())
	assert.Equal(t, []int{1, 2, 3}, ids(tr))

	m, ok := tr.Find(2)
	require.True(t, ok)
	assert.Equal(t, "bob", m.Author)

	_, ok = tr.At(5)
	assert.False(t, ok)
}

func TestApply_ReactionUpdateTouchesOnlyTarget(t *testing.T) {
	tr := seeded()
	before := tr.Messages()

	like := []api.Reaction{{UserID: 9, Username: "carol", ReactionName: api.ReactionLike}}
	eff := tr.Apply(live.ReactionUpdate{MessageID: 2, Reactions: like})
	assert.True(t, eff.Changed)

	after := tr.Messages()
	require.Len(t, after, len(before))
	for i := range after {
		assert.Equal(t, before[i].ID, after[i].ID, "order must not change")
		if after[i].ID == 2 {
			assert.Equal(t, like, after[i].Reactions)
			continue
		}
		assert.Equal(t, before[i], after[i])
	}

	// A later update replaces rather than merges.
	tr.Apply(live.ReactionUpdate{MessageID: 2, Reactions: []api.Reaction{}})
	m, _ := tr.Find(2)
	assert.Empty(t, m.Reactions)
}

func TestApply_ReactionUpdateUnknownMessage(t *testing.T) {
	tr := seeded()
	before := tr.Messages()
	eff := tr.Apply(live.ReactionUpdate{MessageID: 99, Reactions: []api.Reaction{{UserID: 1}}})
	assert.False(t, eff.Changed)
	assert.Equal(t, before, tr.Messages())
}

func TestApply_MessageDeleted(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		want    []int
		changed bool
	}{
		{"first", 1, []int{2, 3}, true},
		{"middle", 2, []int{1, 3}, true},
		{"last", 3, []int{1, 2}, true},
		{"absent", 42, []int{1, 2, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := seeded()
			eff := tr.Apply(live.MessageDeleted{MessageID: tt.id})
			assert.Equal(t, tt.changed, eff.Changed)
			assert.Equal(t, tt.want, ids(tr))
		})
	}
}

func TestDelete_ThenLookupStillWorks(t *testing.T) {
	tr := seeded()
	tr.Delete(1)
	m, ok := tr.Find(3)
	require.True(t, ok)
	assert.Equal(t, "how are you", m.Content)
	assert.True(t, tr.SetReactions(3, []api.Reaction{{UserID: 1}}))
}

func TestApply_ReadReceiptsIdempotent(t *testing.T) {
	once := seeded()
	twice := seeded()
	receipts := live.ReadReceipts{MessageIDs: []int{1, 2, 77}}

	once.Apply(receipts)
	twice.Apply(receipts)
	eff := twice.Apply(receipts)

	assert.False(t, eff.Changed, "second application changes nothing")
	assert.Equal(t, once.Messages(), twice.Messages())
	for _, m := range once.Messages() {
		assert.Equal(t, api.StatusRead, m.Status)
	}
}

func TestScenario_HistoryThenReadReceipt(t *testing.T) {
	tr := New(1)
	tr.Load([]api.Message{msg(1, "alice", "hi", "unread")})

	tr.Apply(live.ReadReceipts{MessageIDs: []int{1}})

	m, ok := tr.Find(1)
	require.True(t, ok)
	assert.Equal(t, "read", m.Status)
}

func TestApply_HistoryCleared(t *testing.T) {
	t.Run("with notice", func(t *testing.T) {
		tr := seeded()
		eff := tr.Apply(live.HistoryCleared{ChatID: 1, Notice: "History cleared by admin"})
		assert.True(t, eff.Changed)
		assert.Equal(t, "History cleared by admin", eff.Notice)
		assert.Zero(t, tr.Len())
	})
	t.Run("already empty", func(t *testing.T) {
		tr := New(1)
		eff := tr.Apply(live.HistoryCleared{})
		assert.NotEmpty(t, eff.Notice)
		assert.Zero(t, tr.Len())
	})
}

func TestApply_NewMessageAppends(t *testing.T) {
	tr := seeded()
	eff := tr.Apply(live.NewMessage{Message: msg(4, "bob", "fine", api.StatusUnread)})
	require.NotNil(t, eff.Appended)
	assert.Equal(t, 4, eff.Appended.ID)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(tr))

	file := api.Message{ID: 5, Author: "bob", FileURL: "uploads/a.png"}
	tr.Apply(live.NewMessage{Message: file})
	last, _ := tr.At(tr.Len() - 1)
	assert.True(t, last.HasFile())
}

func TestApply_PrefixStable(t *testing.T) {
	tr := seeded()
	prefix := ids(tr)

	events := []live.Event{
		live.NewMessage{Message: msg(4, "bob", "x", api.StatusUnread)},
		live.ReadReceipts{MessageIDs: []int{4}},
		live.ReactionUpdate{MessageID: 1, Reactions: []api.Reaction{{UserID: 2}}},
		live.NewMessage{Message: msg(5, "alice", "y", api.StatusUnread)},
	}
	for _, ev := range events {
		tr.Apply(ev)
	}
	got := ids(tr)
	assert.Equal(t, prefix, got[:len(prefix)])
	assert.Equal(t, []int{4, 5}, got[len(prefix):])
}

func TestAllRead(t *testing.T) {
	tr := New(1)
	assert.False(t, tr.AllRead(), "empty transcript")

	tr.Load([]api.Message{msg(1, "a", "x", api.StatusRead)})
	assert.True(t, tr.AllRead())

	tr.Append(msg(2, "b", "y", api.StatusUnread))
	assert.False(t, tr.AllRead())

	tr.MarkRead([]int{2})
	assert.True(t, tr.AllRead())
}

func TestMessages_ReturnsCopy(t *testing.T) {
	tr := seeded()
	out := tr.Messages()
	out[0].Content = "mutated"
	m, _ := tr.Find(1)
	assert.Equal(t, "hi", m.Content)
}
