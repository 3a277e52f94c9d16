package entity

import (
	"time"

	"nutriflow/internal/domain/docstore"
)

// LastMessage is the chat's cached copy of its most recent message.
type LastMessage struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  string    `json:"senderId"`
}

type Chat struct {
	ID           string       `json:"id"`
	Participants []string     `json:"participants"`
	LastMessage  *LastMessage `json:"lastMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (c *Chat) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Counterpart returns the participant that is not self.
func (c *Chat) Counterpart(self string) string {
	for _, p := range c.Participants {
		if p != self {
			return p
		}
	}
	return ""
}

func ChatFromDocument(doc docstore.Document) *Chat {
	f := Fields(doc.Data)
	chat := &Chat{
		ID:           doc.ID,
		Participants: f.Strings("participants"),
		CreatedAt:    f.Time("createdAt"),
		UpdatedAt:    f.Time("updatedAt"),
	}
	if lm := f.Map("lastMessage"); lm != nil {
		chat.LastMessage = &LastMessage{
			Text:      lm.String("text"),
			Timestamp: lm.Time("timestamp"),
			SenderID:  lm.String("senderId"),
		}
	}
	return chat
}

func (c *Chat) Fields() map[string]interface{} {
	m := map[string]interface{}{
		"participants": stringsToAny(c.Participants),
		"createdAt":    c.CreatedAt,
		"updatedAt":    c.UpdatedAt,
	}
	if c.LastMessage != nil {
		m["lastMessage"] = c.LastMessage.Fields()
	}
	return m
}

func (l *LastMessage) Fields() map[string]interface{} {
	return map[string]interface{}{
		"text":      l.Text,
		"timestamp": l.Timestamp,
		"senderId":  l.SenderID,
	}
}
