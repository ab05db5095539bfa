package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/ui"
	"github.com/zhubert/messly/internal/ui/modals"
)

// loadAdmin resets the admin panel and fetches its four sections
// independently; one failing section does not hold up the others.
func (m *Model) loadAdmin() tea.Cmd {
	if !m.session.Valid() {
		return nil
	}
	m.admin.Reset()
	sess, backend, gen := m.session, m.backend, m.sessionGen
	m.log.Info("loading admin panel")

	return tea.Batch(
		func() tea.Msg {
			stats, err := backend.Statistics(context.Background(), sess)
			return AdminStatsMsg{Gen: gen, Stats: stats, Err: err}
		},
		func() tea.Msg {
			users, err := backend.AdminUsers(context.Background(), sess)
			return AdminUsersMsg{Gen: gen, Users: users, Err: err}
		},
		func() tea.Msg {
			chats, err := backend.AdminChats(context.Background(), sess)
			return AdminChatsMsg{Gen: gen, Chats: chats, Err: err}
		},
		func() tea.Msg {
			msgs, err := backend.AdminMessages(context.Background(), sess)
			return AdminMessagesMsg{Gen: gen, Messages: msgs, Err: err}
		},
	)
}

// adminResult checks a section result. ok is false when the result is stale
// or failed; cmd is then whatever the failure requires.
func (m *Model) adminResult(gen int, tab ui.AdminTab, err error) (ok bool, cmd tea.Cmd) {
	if gen != m.sessionGen || m.route != RouteAdmin {
		return false, nil
	}
	if err == nil {
		return true, nil
	}
	m.log.Warn("admin fetch failed", "section", tab, "error", err)
	if errors.Is(err, errors.KindAuth) {
		return false, m.forceReload(noticeSessionExpired)
	}
	m.admin.SetError(tab, errors.Message(err))
	return false, nil
}

func (m *Model) handleAdminStats(msg AdminStatsMsg) (tea.Model, tea.Cmd) {
	ok, cmd := m.adminResult(msg.Gen, ui.AdminTabStats, msg.Err)
	if ok && msg.Stats != nil {
		m.admin.SetStats(*msg.Stats)
	}
	return m, cmd
}

func (m *Model) handleAdminUsers(msg AdminUsersMsg) (tea.Model, tea.Cmd) {
	ok, cmd := m.adminResult(msg.Gen, ui.AdminTabUsers, msg.Err)
	if ok {
		m.admin.SetUsers(msg.Users)
	}
	return m, cmd
}

func (m *Model) handleAdminChats(msg AdminChatsMsg) (tea.Model, tea.Cmd) {
	ok, cmd := m.adminResult(msg.Gen, ui.AdminTabChats, msg.Err)
	if ok {
		m.admin.SetChats(msg.Chats)
	}
	return m, cmd
}

func (m *Model) handleAdminMessages(msg AdminMessagesMsg) (tea.Model, tea.Cmd) {
	ok, cmd := m.adminResult(msg.Gen, ui.AdminTabMessages, msg.Err)
	if ok {
		m.admin.SetMessages(msg.Messages)
	}
	return m, cmd
}

// handleAdminKey handles keys on the admin screen when no modal is open.
func (m *Model) handleAdminKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.admin.IsSearchMode() {
		admin, cmd := m.admin.Update(msg)
		m.admin = admin
		return m, cmd
	}

	switch msg.String() {
	case "/":
		if m.admin.Tab() != ui.AdminTabUsers {
			m.admin.SetTab(ui.AdminTabUsers)
		}
		return m, m.admin.EnterSearchMode()
	case "e", "enter":
		if u := m.selectedAdminUser(); u != nil {
			m.modal.Show(modals.NewEditUserState(*u))
		}
		return m, nil
	case "d", "delete":
		if u := m.selectedAdminUser(); u != nil {
			m.modal.Show(modals.NewConfirmState(modals.ConfirmDeleteUser, u.ID, u.Username,
				fmt.Sprintf("Delete user %s (%s)? Their messages stay.", u.Username, u.Email)))
		}
		return m, nil
	case "r":
		return m, tea.Batch(m.loadAdmin(), m.ShowFlashInfo("Refreshing"))
	case "L":
		return m, m.logout()
	}

	admin, cmd := m.admin.Update(msg)
	m.admin = admin
	return m, cmd
}

// selectedAdminUser returns the highlighted user on the users tab.
func (m *Model) selectedAdminUser() *api.AdminUser {
	if m.admin.Tab() != ui.AdminTabUsers {
		return nil
	}
	return m.admin.SelectedUser()
}

func (m *Model) handleEditUserModal(key string, msg tea.KeyPressMsg, s *modals.EditUserState) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.modal.Hide()
		return m, nil
	case "enter":
		if err := s.Validate(); err != nil {
			m.modal.SetError(errors.Message(err))
			return m, nil
		}
		return m, m.updateUser(s.UserID, s.Values())
	}
	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

func (m *Model) updateUser(id int, upd api.UserUpdate) tea.Cmd {
	sess, backend := m.session, m.backend
	m.log.Info("updating user", "user_id", id, "role", upd.Role)
	return func() tea.Msg {
		u, err := backend.UpdateUser(context.Background(), sess, id, upd)
		if u == nil && err == nil {
			u = &api.AdminUser{ID: id, Username: upd.Username, Email: upd.Email, Role: upd.Role}
		}
		return UserUpdatedMsg{User: u, Err: err}
	}
}

func (m *Model) deleteUser(id int) tea.Cmd {
	sess, backend := m.session, m.backend
	m.log.Info("deleting user", "user_id", id)
	return func() tea.Msg {
		return UserDeletedMsg{UserID: id, Err: backend.DeleteUser(context.Background(), sess, id)}
	}
}

// adminActionFailed shows a failed edit or delete in the open modal.
func (m *Model) adminActionFailed(what string, err error) tea.Cmd {
	m.log.Warn(what+" failed", "error", err)
	if errors.Is(err, errors.KindAuth) {
		return m.forceReload(noticeSessionExpired)
	}
	if m.modal.IsVisible() {
		m.modal.SetError(errors.Message(err))
		return nil
	}
	return m.ShowFlashError(errors.Message(err))
}

// handleUserUpdated reconciles the users table with the edited row.
func (m *Model) handleUserUpdated(msg UserUpdatedMsg) (tea.Model, tea.Cmd) {
	if m.route != RouteAdmin {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.adminActionFailed("user update", msg.Err)
	}
	m.modal.Hide()
	m.admin.ReplaceUser(*msg.User)
	return m, m.ShowFlashSuccess("Updated " + msg.User.Username)
}

// handleUserDeleted drops the deleted row from the users table.
func (m *Model) handleUserDeleted(msg UserDeletedMsg) (tea.Model, tea.Cmd) {
	if m.route != RouteAdmin {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.adminActionFailed("user delete", msg.Err)
	}
	m.modal.Hide()
	m.admin.RemoveUser(msg.UserID)
	return m, m.ShowFlashSuccess("User deleted")
}
