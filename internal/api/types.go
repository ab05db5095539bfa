package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ChatKind distinguishes two-party chats from named groups.
type ChatKind string

const (
	KindPersonal ChatKind = "personal"
	KindGroup    ChatKind = "group"
)

// Message statuses.
const (
	StatusRead   = "read"
	StatusUnread = "unread"
)

// Member online statuses.
const (
	MemberOnline  = "online"
	MemberOffline = "offline"
)

// Chat roles returned by /chats/{id}/role.
const (
	ChatRoleAdmin  = "admin"
	ChatRoleMember = "member"
)

// SystemSenderID is the sender id the backend uses for synthetic messages
// ("alice joined the chat").
const SystemSenderID = 0

// DeletedUser is displayed for a member whose account no longer exists.
const DeletedUser = "Deleted User"

// ReactionLike is the only reaction the client toggles.
const ReactionLike = "like"

// Timestamp accepts the backend's ISO timestamps, which usually omit the zone.
// Naive values are UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format("2006-01-02T15:04:05.999999"))
}

// Member is one participant of a chat.
type Member struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Status         string `json:"status,omitempty"`
}

// Online reports whether the member is currently connected.
func (m Member) Online() bool {
	return m.Status == MemberOnline
}

// LastMessage summarizes the newest message of a chat in the chat list.
type LastMessage struct {
	ID         int       `json:"id"`
	Content    string    `json:"content"`
	SenderID   *int      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SentAt     Timestamp `json:"sent_at"`
	Status     string    `json:"status"`
}

// IsSystem reports whether the message was authored by the backend itself.
func (l *LastMessage) IsSystem() bool {
	return l != nil && l.SenderID != nil && *l.SenderID == SystemSenderID
}

// Chat is one entry of the chat list.
type Chat struct {
	ID          int          `json:"id"`
	Name        string       `json:"name,omitempty"`
	Photo       string       `json:"photo,omitempty"`
	Members     []Member     `json:"members,omitempty"`
	LastMessage *LastMessage `json:"last_message,omitempty"`
	UnreadCount int          `json:"unread_count"`

	// Kind is not on the wire; it comes from the list the chat arrived in.
	Kind ChatKind `json:"-"`
}

// Peer returns the member of a personal chat that is not me. ok is false when
// no such member remains.
func (c Chat) Peer(me string) (Member, bool) {
	for _, m := range c.Members {
		if m.Username != me && m.Username != "" && m.Username != DeletedUser {
			return m, true
		}
	}
	return Member{Username: DeletedUser, Status: MemberOffline}, false
}

// DisplayName is the group name, or the other member's username for
// personal chats.
func (c Chat) DisplayName(me string) string {
	if c.Kind == KindGroup {
		return c.Name
	}
	peer, _ := c.Peer(me)
	return peer.Username
}

// ChatList is the response of GET /chats/.
type ChatList struct {
	Personal []Chat `json:"personal"`
	Group    []Chat `json:"group"`
}

// stampKinds records on each chat which list it came from.
func (l *ChatList) stampKinds() {
	for i := range l.Personal {
		l.Personal[i].Kind = KindPersonal
	}
	for i := range l.Group {
		l.Group[i].Kind = KindGroup
	}
}

// ChatInfo is the response of GET /chats/{id}.
type ChatInfo struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Photo   string   `json:"photo"`
	Members []Member `json:"members"`
}

// Reaction is one user's reaction to a message.
type Reaction struct {
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	Avatar       string `json:"avatar,omitempty"`
	ReactionName string `json:"reaction_name"`
}

// Message is one transcript entry, either from history or pushed live.
type Message struct {
	ID           int        `json:"id"`
	Author       string     `json:"author"`
	AuthorAvatar string     `json:"author_avatar,omitempty"`
	Content      string     `json:"content"`
	FileURL      string     `json:"file_url,omitempty"`
	Filename     string     `json:"filename,omitempty"`
	IsImage      bool       `json:"is_image,omitempty"`
	SentAt       Timestamp  `json:"sent_at"`
	Status       string     `json:"status,omitempty"`
	Reactions    []Reaction `json:"reactions,omitempty"`
	IsSystem     bool       `json:"is_system,omitempty"`
}

// HasFile reports whether the message carries an attachment.
func (m Message) HasFile() bool {
	return m.FileURL != ""
}

// DisplayFilename returns the attachment name shown to the user.
func (m Message) DisplayFilename() string {
	if m.Filename != "" {
		return m.Filename
	}
	if i := strings.LastIndex(m.FileURL, "/"); i >= 0 {
		return m.FileURL[i+1:]
	}
	return m.FileURL
}

// LikedBy reports whether username holds a like on the message.
func (m Message) LikedBy(username string) bool {
	for _, r := range m.Reactions {
		if r.Username == username && r.ReactionName == ReactionLike {
			return true
		}
	}
	return false
}

// Me is the response of GET /me.
type Me struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture"`
	Description    string `json:"description"`
	Role           string `json:"role"`
}

// Profile is the public card of a user.
type Profile struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
	Description    string `json:"description"`
	Status         string `json:"status"`
}

// UserSummary is one result of the user search.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// LoginResult is the response of POST /login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
}

// Upload is the response of the chat file upload.
type Upload struct {
	FileURL string `json:"file_url"`
	IsImage bool   `json:"is_image"`
}

// AdminUser is one row of the admin user table.
type AdminUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AdminChatMessage is a message summary nested in AdminChat.
type AdminChatMessage struct {
	ID      int       `json:"id"`
	Content string    `json:"content"`
	SentAt  Timestamp `json:"sent_at"`
}

// AdminChat is one row of the admin chat table.
type AdminChat struct {
	ID        int                `json:"id"`
	Name      string             `json:"name"`
	Type      string             `json:"type"`
	Creator   int                `json:"creator"`
	CreatedAt Timestamp          `json:"created_at"`
	Members   []Member           `json:"members"`
	Messages  []AdminChatMessage `json:"messages"`
}

// AdminMessage is one row of the admin message table.
type AdminMessage struct {
	ID       int       `json:"id"`
	Content  string    `json:"content"`
	SenderID int       `json:"sender_id"`
	ChatID   int       `json:"chat_id"`
	SentAt   Timestamp `json:"sent_at"`
	Status   string    `json:"status"`
}

// Stats are the admin dashboard totals.
type Stats struct {
	TotalUsers    int `json:"total_users"`
	TotalChats    int `json:"total_chats"`
	TotalMessages int `json:"total_messages"`
}

// UserUpdate is the admin edit payload.
type UserUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
