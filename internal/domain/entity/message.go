package entity

import (
	"time"

	"nutriflow/internal/domain/docstore"
)

// Message is a child of one chat. Only Read may change after creation.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Summary projects the message onto its chat's cached lastMessage.
func (m *Message) Summary() *LastMessage {
	return &LastMessage{
		Text:      m.Text,
		Timestamp: m.Timestamp,
		SenderID:  m.SenderID,
	}
}

func MessageFromDocument(chatID string, doc docstore.Document) *Message {
	f := Fields(doc.Data)
	return &Message{
		ID:        doc.ID,
		ChatID:    chatID,
		SenderID:  f.String("senderId"),
		Text:      f.String("text"),
		ImageURL:  f.String("imageUrl"),
		Timestamp: f.Time("timestamp"),
		Read:      f.Bool("read"),
	}
}

func (m *Message) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"senderId":  m.SenderID,
		"timestamp": m.Timestamp,
		"read":      m.Read,
	}
	putIf(fields, "text", m.Text)
	putIf(fields, "imageUrl", m.ImageURL)
	return fields
}
