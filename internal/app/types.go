package app

import (
	"context"
	"io"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/clipboard"
	"github.com/zhubert/messly/internal/live"
	"github.com/zhubert/messly/internal/session"
)

// Backend is the slice of the REST client the app uses. *api.Client
// implements it; tests substitute a mock.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Register(ctx context.Context, email, username, password string) error
	Me(ctx context.Context, s *session.Session) (*api.Me, error)
	Logout(ctx context.Context, s *session.Session) error

	Chats(ctx context.Context, s *session.Session) (*api.ChatList, error)
	CreateGroup(ctx context.Context, s *session.Session, name string) (*api.Chat, error)
	CreatePersonal(ctx context.Context, s *session.Session, username string) (*api.Chat, error)
	ChatInfo(ctx context.Context, s *session.Session, chatID int) (*api.ChatInfo, error)
	Members(ctx context.Context, s *session.Session, chatID int) ([]api.Member, error)
	Role(ctx context.Context, s *session.Session, chatID int) (string, error)
	IsMember(ctx context.Context, s *session.Session, chatID int) (bool, error)
	AddMember(ctx context.Context, s *session.Session, chatID int, username string) error
	RemoveMember(ctx context.Context, s *session.Session, chatID int, username string) error
	RenameChat(ctx context.Context, s *session.Session, chatID int, name string) (string, error)
	DeleteChat(ctx context.Context, s *session.Session, chatID int) error
	LeaveChat(ctx context.Context, s *session.Session, chatID int) error
	UploadChatPhoto(ctx context.Context, s *session.Session, chatID int, filename string, r io.Reader) (string, error)

	Messages(ctx context.Context, s *session.Session, chatID int) ([]api.Message, error)
	UploadFile(ctx context.Context, s *session.Session, chatID int, filename string, r io.Reader) (*api.Upload, error)
	DeleteMessage(ctx context.Context, s *session.Session, messageID int) error
	ClearHistory(ctx context.Context, s *session.Session, chatID int) error
	ToggleReaction(ctx context.Context, s *session.Session, messageID int, reaction string) ([]api.Reaction, error)

	SearchUsers(ctx context.Context, s *session.Session, query string) ([]api.UserSummary, error)
	Profile(ctx context.Context, s *session.Session, username string) (*api.Profile, error)
	UpdateUsername(ctx context.Context, s *session.Session, username string) (string, error)
	UpdateDescription(ctx context.Context, s *session.Session, description string) (string, error)
	UploadAvatar(ctx context.Context, s *session.Session, filename string, r io.Reader) (string, error)

	Statistics(ctx context.Context, s *session.Session) (*api.Stats, error)
	AdminUsers(ctx context.Context, s *session.Session) ([]api.AdminUser, error)
	AdminChats(ctx context.Context, s *session.Session) ([]api.AdminChat, error)
	AdminMessages(ctx context.Context, s *session.Session) ([]api.AdminMessage, error)
	UpdateUser(ctx context.Context, s *session.Session, userID int, upd api.UserUpdate) (*api.AdminUser, error)
	DeleteUser(ctx context.Context, s *session.Session, userID int) error

	AssetURL(ref string) string
}

// Dialer opens live channels. *live.Dialer implements it.
type Dialer interface {
	Dial(ctx context.Context, chatID int, token string) (live.Channel, error)
}

// Deps are the collaborators the model talks to.
type Deps struct {
	Backend Backend
	Dialer  Dialer
	Store   *session.Store
}

// =============================================================================
// Guard and auth messages
// =============================================================================

// IdentityMsg carries the result of GET /me.
type IdentityMsg struct {
	Token   string // token the request was made with
	Me      *api.Me
	Err     error
	Purpose identityPurpose
}

type identityPurpose int

const (
	identityStartup identityPurpose = iota
	identityLogin
	identityRefresh
)

// LoginResultMsg carries the result of POST /login.
type LoginResultMsg struct {
	Gen    int
	Email  string
	Result *api.LoginResult
	Err    error
}

// RegisterResultMsg carries the result of POST /register.
type RegisterResultMsg struct {
	Gen   int
	Email string
	Err   error
}

// AuthTimerMsg advances the auth state machine after a delay.
type AuthTimerMsg struct {
	Gen  int
	Step authStep
}

// LoggedOutMsg reports that the best-effort logout call finished.
type LoggedOutMsg struct {
	Err error
}

// =============================================================================
// Chat list messages
// =============================================================================

// ChatsLoadedMsg carries a chat list refresh.
type ChatsLoadedMsg struct {
	Gen  int
	List *api.ChatList
	Err  error
}

// ChatListTickMsg triggers the next chat list refresh.
type ChatListTickMsg struct {
	Gen int
}

// ChatCreatedMsg carries the result of creating a chat.
type ChatCreatedMsg struct {
	Gen  int
	Kind api.ChatKind
	Chat *api.Chat
	Err  error
}

// =============================================================================
// Chat window messages. Every one carries the chat id and activation
// generation it was issued for, and is dropped when stale.
// =============================================================================

// HistoryMsg carries the message history of a chat.
type HistoryMsg struct {
	ChatID, Gen int
	Messages    []api.Message
	Err         error
}

// RoleMsg carries the current user's role in a chat.
type RoleMsg struct {
	ChatID, Gen int
	Role        string
	Err         error
}

// MembersMsg carries the member list of a chat.
type MembersMsg struct {
	ChatID, Gen int
	Members     []api.Member
	Err         error
}

// ChatInfoMsg carries a chat's name, photo and members.
type ChatInfoMsg struct {
	ChatID, Gen int
	Info        *api.ChatInfo
	Err         error
}

// LiveOpenedMsg carries a freshly dialed live channel.
type LiveOpenedMsg struct {
	ChatID, Gen int
	Channel     live.Channel
	Err         error
}

// LiveEventMsg is one decoded inbound payload.
type LiveEventMsg struct {
	ChatID, Gen int
	Event       live.Event
}

// LiveClosedMsg reports that a live channel's event stream ended.
type LiveClosedMsg struct {
	ChatID, Gen int
	Err         error
}

// MembershipTickMsg triggers the periodic membership check.
type MembershipTickMsg struct {
	ChatID, Gen int
}

// MembershipMsg carries an is_member result. Content is set when the check
// guards an outgoing message.
type MembershipMsg struct {
	ChatID, Gen int
	Member      bool
	Err         error
	Content     string
}

// AllReadNoticeDoneMsg clears the "all messages read" header notice.
type AllReadNoticeDoneMsg struct {
	Gen int
}

// UploadDoneMsg carries the result of an attachment upload.
type UploadDoneMsg struct {
	ChatID, Gen int
	Filename    string
	FileURL     string
	Err         error
}

// ClipboardImageMsg carries an image read from the clipboard.
type ClipboardImageMsg struct {
	Image *clipboard.ImageData
	Err   error
}

// ReactionMsg carries the reactions returned by a like toggle.
type ReactionMsg struct {
	ChatID, Gen int
	MessageID   int
	Reactions   []api.Reaction
	Err         error
}

// MessageDeletedMsg carries the result of deleting a message.
type MessageDeletedMsg struct {
	ChatID, Gen int
	MessageID   int
	Err         error
}

// =============================================================================
// Moderation, profile and admin messages
// =============================================================================

// ModerationMsg carries the result of a chat moderation or membership action.
type ModerationMsg struct {
	ChatID int
	Action moderationAction
	Target string // member username or new chat name
	Err    error
}

// UserSearchMsg carries user search results for the add member modal.
type UserSearchMsg struct {
	Query   string
	Results []api.UserSummary
	Err     error
}

// ProfileMsg carries another user's public profile.
type ProfileMsg struct {
	Username string
	Profile  *api.Profile
	Err      error
}

// ProfileSavedMsg carries the result of editing the current user's profile.
type ProfileSavedMsg struct {
	Username    string
	Description string
	Err         error
}

// AvatarUploadedMsg carries the new profile picture reference.
type AvatarUploadedMsg struct {
	Picture string
	Err     error
}

// AdminStatsMsg carries the admin statistics.
type AdminStatsMsg struct {
	Gen   int
	Stats *api.Stats
	Err   error
}

// AdminUsersMsg carries the admin user table.
type AdminUsersMsg struct {
	Gen   int
	Users []api.AdminUser
	Err   error
}

// AdminChatsMsg carries the admin chat table.
type AdminChatsMsg struct {
	Gen   int
	Chats []api.AdminChat
	Err   error
}

// AdminMessagesMsg carries the admin message table.
type AdminMessagesMsg struct {
	Gen      int
	Messages []api.AdminMessage
	Err      error
}

// UserUpdatedMsg carries the result of an admin user edit.
type UserUpdatedMsg struct {
	User *api.AdminUser
	Err  error
}

// UserDeletedMsg carries the result of an admin user deletion.
type UserDeletedMsg struct {
	UserID int
	Err    error
}
