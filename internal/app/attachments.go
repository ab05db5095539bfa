package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/dustin/go-humanize"

	"github.com/zhubert/messly/internal/clipboard"
	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/live"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/session"
	"github.com/zhubert/messly/internal/ui"
	"github.com/zhubert/messly/internal/ui/modals"
)

// uploadFunc sends the opened file to the backend.
type uploadFunc func(ctx context.Context, r io.Reader) (string, error)

// withFile opens path and hands it to upload, closing it afterwards.
func withFile(path string, upload uploadFunc) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.E(errors.Op("app.upload"), errors.KindIO, err)
	}
	defer f.Close()
	return upload(context.Background(), f)
}

// showAttachPicker opens the path picker for a chat attachment.
func (m *Model) showAttachPicker() {
	if m.transcript == nil || m.chat.IsUploading() {
		return
	}
	m.modal.Show(modals.NewPathPickerState(modals.PickAttachment, m.transcript.ChatID()))
}

// handlePathPickerModal drives the attachment, chat photo and avatar pickers.
func (m *Model) handlePathPickerModal(key string, msg tea.KeyPressMsg, s *modals.PathPickerState) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		if s.IsShowingOptions() {
			break
		}
		switch s.Purpose {
		case modals.PickChatPhoto:
			return m, m.showChatInfo()
		case modals.PickAvatar:
			return m, m.showProfile()
		}
		m.modal.Hide()
		return m, nil
	case "enter":
		if s.IsShowingOptions() {
			break
		}
		if err := s.Validate(); err != nil {
			m.modal.SetError(errors.Message(err))
			return m, nil
		}
		return m, m.submitPath(s)
	}

	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

// submitPath starts the upload the picker was opened for.
func (m *Model) submitPath(s *modals.PathPickerState) tea.Cmd {
	path := s.Path()
	name := filepath.Base(path)

	switch s.Purpose {
	case modals.PickChatPhoto:
		return m.moderate(modPhoto, name, func(ctx context.Context, b Backend, sess *session.Session, id int) (string, error) {
			return withFile(path, func(ctx context.Context, r io.Reader) (string, error) {
				return b.UploadChatPhoto(ctx, sess, id, name, r)
			})
		})

	case modals.PickAvatar:
		sess, backend := m.session, m.backend
		return func() tea.Msg {
			pic, err := withFile(path, func(ctx context.Context, r io.Reader) (string, error) {
				return backend.UploadAvatar(ctx, sess, name, r)
			})
			return AvatarUploadedMsg{Picture: pic, Err: err}
		}

	default:
		if m.transcript == nil {
			m.modal.Hide()
			return nil
		}
		var size int64
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
		m.modal.Hide()
		return m.startUpload(name, size, func(ctx context.Context, b Backend, sess *session.Session, chatID int) (string, error) {
			return withFile(path, func(ctx context.Context, r io.Reader) (string, error) {
				up, err := b.UploadFile(ctx, sess, chatID, name, r)
				if err != nil {
					return "", err
				}
				return up.FileURL, nil
			})
		})
	}
}

// startUpload marks the chat as uploading and runs call. call returns the
// uploaded file's URL.
func (m *Model) startUpload(name string, size int64, call moderationCall) tea.Cmd {
	chatID, gen := m.transcript.ChatID(), m.chatGen
	sess, backend := m.session, m.backend

	m.chat.SetUploading(&ui.UploadState{Filename: name, Size: size, Started: m.now()})
	logger.WithChat(chatID).Info("uploading", "file", name, "size", humanize.Bytes(uint64(size)))

	return func() tea.Msg {
		fileURL, err := call(context.Background(), backend, sess, chatID)
		return UploadDoneMsg{ChatID: chatID, Gen: gen, Filename: name, FileURL: fileURL, Err: err}
	}
}

// handleUploadDone writes the uploaded file's URL to the live channel. The
// message appears when the server echoes it back.
func (m *Model) handleUploadDone(msg UploadDoneMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrent(msg.ChatID, msg.Gen) {
		return m, nil
	}
	m.chat.SetUploading(nil)
	log := logger.WithChat(msg.ChatID)

	if msg.Err != nil {
		log.Warn("upload failed", "file", msg.Filename, "error", msg.Err)
		if errors.Is(msg.Err, errors.KindAuth) {
			return m, m.forceReload(noticeSessionExpired)
		}
		return m, m.ShowFlashError("Upload failed: " + errors.Message(msg.Err))
	}

	if err := m.sendLive(live.File{FileURL: msg.FileURL}); err != nil {
		log.Warn("failed to send file", "file", msg.Filename, "error", err)
		return m, m.ShowFlashError("File uploaded but not sent")
	}
	return m, m.ShowFlashSuccess("Sent " + msg.Filename)
}

// pasteImage reads an image from the clipboard.
func (m *Model) pasteImage() tea.Cmd {
	if m.transcript == nil || m.chat.IsUploading() {
		return nil
	}
	return func() tea.Msg {
		img, err := clipboard.ReadImage()
		return ClipboardImageMsg{Image: img, Err: err}
	}
}

// handleClipboardImage uploads a pasted image as an attachment. A clipboard
// without an image is ignored.
func (m *Model) handleClipboardImage(msg ClipboardImageMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Warn("clipboard read failed", "error", msg.Err)
		return m, m.ShowFlashError("Could not read the clipboard")
	}
	if msg.Image == nil || m.transcript == nil {
		return m, nil
	}
	if err := msg.Image.Validate(); err != nil {
		return m, m.ShowFlashError(err.Error())
	}

	data := msg.Image.Data
	name := clipboard.PastedImageName
	return m, tea.Batch(
		m.ShowFlashInfo("Uploading pasted image ("+msg.Image.Size()+")"),
		m.startUpload(name, int64(len(data)), func(ctx context.Context, b Backend, sess *session.Session, chatID int) (string, error) {
			up, err := b.UploadFile(ctx, sess, chatID, name, bytes.NewReader(data))
			if err != nil {
				return "", err
			}
			return up.FileURL, nil
		}),
	)
}
