package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/ui/modals"
)

// showProfile opens the current user's profile panel and refreshes /me
// behind it.
func (m *Model) showProfile() tea.Cmd {
	if !m.session.Valid() {
		return nil
	}
	m.modal.Show(modals.NewProfileState(m.session, m.backend.AssetURL(m.session.ProfilePicture)))
	return m.fetchIdentity(identityRefresh)
}

func (m *Model) handleProfileModal(key string, msg tea.KeyPressMsg, s *modals.ProfileState) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.modal.Hide()
		return m, nil
	case "ctrl+a":
		m.modal.Show(modals.NewPathPickerState(modals.PickAvatar, 0))
		return m, nil
	case "ctrl+l":
		m.modal.Show(modals.NewConfirmState(modals.ConfirmLogout, 0, m.session.Username, "Sign out of messly?"))
		return m, nil
	case "enter":
		if err := s.Validate(); err != nil {
			m.modal.SetError(errors.Message(err))
			return m, nil
		}
		if !s.UsernameChanged() && !s.DescriptionChanged() {
			m.modal.Hide()
			return m, nil
		}
		return m, m.saveProfile(s)
	}

	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

// saveProfile sends the edited fields. The username goes first so a rejected
// name leaves the description untouched.
func (m *Model) saveProfile(s *modals.ProfileState) tea.Cmd {
	sess, backend := m.session, m.backend
	username, description := s.Username(), s.Description()
	nameChanged, descChanged := s.UsernameChanged(), s.DescriptionChanged()
	m.log.Info("saving profile", "username_changed", nameChanged, "description_changed", descChanged)

	return func() tea.Msg {
		ctx := context.Background()
		saved := ProfileSavedMsg{Username: sess.Username, Description: sess.Description}
		if nameChanged {
			name, err := backend.UpdateUsername(ctx, sess, username)
			if err != nil {
				saved.Err = err
				return saved
			}
			saved.Username = name
		}
		if descChanged {
			desc, err := backend.UpdateDescription(ctx, sess, description)
			if err != nil {
				saved.Err = err
				return saved
			}
			if desc == "" {
				desc = description
			}
			saved.Description = desc
		}
		return saved
	}
}

// handleProfileSaved updates the session with the saved profile.
func (m *Model) handleProfileSaved(msg ProfileSavedMsg) (tea.Model, tea.Cmd) {
	if !m.session.Valid() {
		return m, nil
	}
	if msg.Err != nil {
		m.log.Warn("profile update failed", "error", msg.Err)
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		if _, ok := m.modal.State.(*modals.ProfileState); ok {
			m.modal.SetError(errors.Message(msg.Err))
			return m, nil
		}
		return m, m.ShowFlashError(errors.Message(msg.Err))
	}

	m.session.Username = msg.Username
	m.session.Description = msg.Description
	m.saveSession()
	m.applyIdentity()
	if s, ok := m.modal.State.(*modals.ProfileState); ok {
		s.Saved(msg.Username, msg.Description)
		m.modal.Hide()
	}
	return m, m.ShowFlashSuccess("Profile saved")
}

// handleAvatarUploaded records the new picture and returns to the profile.
func (m *Model) handleAvatarUploaded(msg AvatarUploadedMsg) (tea.Model, tea.Cmd) {
	if !m.session.Valid() {
		return m, nil
	}
	if msg.Err != nil {
		m.log.Warn("avatar upload failed", "error", msg.Err)
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		if _, ok := m.modal.State.(*modals.PathPickerState); ok {
			m.modal.SetError(errors.Message(msg.Err))
			return m, nil
		}
		return m, m.ShowFlashError(errors.Message(msg.Err))
	}

	if msg.Picture != "" {
		m.session.ProfilePicture = msg.Picture
		m.saveSession()
	}
	return m, tea.Batch(m.showProfile(), m.ShowFlashSuccess("Profile picture updated"))
}

// =============================================================================
// Other users' profiles
// =============================================================================

// showUserProfile opens the public card of username.
func (m *Model) showUserProfile(username string) tea.Cmd {
	if username == "" {
		return nil
	}
	m.modal.Show(modals.NewUserProfileState(username))
	sess, backend := m.session, m.backend
	return func() tea.Msg {
		p, err := backend.Profile(context.Background(), sess, username)
		return ProfileMsg{Username: username, Profile: p, Err: err}
	}
}

// showAuthorProfile opens the profile of the selected message's author.
func (m *Model) showAuthorProfile() tea.Cmd {
	sel, ok := m.chat.SelectedMessage()
	if !ok || sel.IsSystem {
		return nil
	}
	return m.showUserProfile(sel.Author)
}

func (m *Model) handleProfile(msg ProfileMsg) (tea.Model, tea.Cmd) {
	s, ok := m.modal.State.(*modals.UserProfileState)
	if !ok || s.Username != msg.Username {
		return m, nil
	}
	if msg.Err != nil {
		m.log.Warn("profile fetch failed", "username", msg.Username, "error", msg.Err)
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		s.SetFailed()
		return m, nil
	}
	s.SetProfile(msg.Profile, m.backend.AssetURL(msg.Profile.ProfilePicture))
	return m, nil
}
