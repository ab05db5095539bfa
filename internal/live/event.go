package live

import (
	"encoding/json"
	"fmt"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/errors"
)

// Inbound type discriminators. A payload without a type is a new message.
const (
	TypeReactionUpdate = "reaction_update"
	TypeReadReceipts   = "read_receipts"
	TypeHistoryCleared = "chat_history_cleared"
	TypeMessageDeleted = "message_deleted"

	// typeMessage labels untyped payloads in logs and metrics.
	typeMessage = "message"
)

// Event is one decoded inbound payload. The concrete types below are the
// only implementations.
type Event interface {
	// Kind returns the wire discriminator ("message" for untyped payloads).
	Kind() string
	isEvent()
}

// NewMessage is a chat message pushed by the server, with or without a file.
type NewMessage struct {
	Message api.Message
}

// ReactionUpdate replaces the reactions of one message.
type ReactionUpdate struct {
	MessageID int
	Reactions []api.Reaction
}

// ReadReceipts marks messages as read.
type ReadReceipts struct {
	MessageIDs []int
}

// HistoryCleared empties the transcript. Notice is the server's text.
type HistoryCleared struct {
	ChatID int
	Notice string
}

// MessageDeleted removes one message.
type MessageDeleted struct {
	MessageID int
}

func (NewMessage) Kind() string     { return typeMessage }
func (ReactionUpdate) Kind() string { return TypeReactionUpdate }
func (ReadReceipts) Kind() string   { return TypeReadReceipts }
func (HistoryCleared) Kind() string { return TypeHistoryCleared }
func (MessageDeleted) Kind() string { return TypeMessageDeleted }

func (NewMessage) isEvent()     {}
func (ReactionUpdate) isEvent() {}
func (ReadReceipts) isEvent()   {}
func (HistoryCleared) isEvent() {}
func (MessageDeleted) isEvent() {}

// wire is the union of every inbound field.
type wire struct {
	Type           *string         `json:"type"`
	MessageID      *int            `json:"message_id"`
	Reactions      []api.Reaction  `json:"reactions"`
	ReadMessageIDs []int           `json:"read_message_ids"`
	ChatID         int             `json:"chat_id"`
	Notice         string          `json:"message"`
	Content        json.RawMessage `json:"content"`
	FileURL        string          `json:"file_url"`
}

// Decode parses one frame. Anything that is not a JSON object of a known
// shape yields a KindProtocol error; the caller logs and drops it.
func Decode(data []byte) (Event, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.MalformedPayload(err)
	}

	if w.Type == nil {
		return decodeMessage(data, w)
	}

	switch *w.Type {
	case TypeReactionUpdate:
		if w.MessageID == nil {
			return nil, errors.MalformedPayload(fmt.Errorf("%s without message_id", *w.Type))
		}
		reactions := w.Reactions
		if reactions == nil {
			reactions = []api.Reaction{}
		}
		return ReactionUpdate{MessageID: *w.MessageID, Reactions: reactions}, nil
	case TypeReadReceipts:
		return ReadReceipts{MessageIDs: w.ReadMessageIDs}, nil
	case TypeHistoryCleared:
		return HistoryCleared{ChatID: w.ChatID, Notice: w.Notice}, nil
	case TypeMessageDeleted:
		if w.MessageID == nil {
			return nil, errors.MalformedPayload(fmt.Errorf("%s without message_id", *w.Type))
		}
		return MessageDeleted{MessageID: *w.MessageID}, nil
	default:
		return nil, errors.MalformedPayload(fmt.Errorf("unknown event type %q", *w.Type))
	}
}

func decodeMessage(data []byte, w wire) (Event, error) {
	hasContent := len(w.Content) > 0 && string(w.Content) != "null" && string(w.Content) != `""`
	if !hasContent && w.FileURL == "" {
		return nil, errors.MalformedPayload(fmt.Errorf("message without content or file_url"))
	}
	var m api.Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.MalformedPayload(err)
	}
	return NewMessage{Message: m}, nil
}

// Outbound is a payload the client writes to the live channel.
type Outbound interface {
	Kind() string
	isOutbound()
}

// Text sends a chat message.
type Text struct {
	Content string `json:"content"`
}

// File announces an uploaded attachment.
type File struct {
	FileURL string `json:"file_url"`
}

// ReadReceipt tells the server the viewer has seen the chat.
type ReadReceipt struct {
	Type   string `json:"type"`
	ChatID int    `json:"chat_id"`
}

// NewReadReceipt returns the read receipt for chatID.
func NewReadReceipt(chatID int) ReadReceipt {
	return ReadReceipt{Type: TypeReadReceipts, ChatID: chatID}
}

func (Text) Kind() string        { return "content" }
func (File) Kind() string        { return "file_url" }
func (ReadReceipt) Kind() string { return TypeReadReceipts }

func (Text) isOutbound()        {}
func (File) isOutbound()        {}
func (ReadReceipt) isOutbound() {}
