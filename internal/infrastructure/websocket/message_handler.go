package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// Inbound message types
const (
	MessageTypeAuth        = "auth"
	MessageTypeSignOut     = "signout"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypePing        = "ping"
)

// Outbound message types
const (
	MessageTypeSnapshot = "snapshot"
	MessageTypeError    = "error"
	MessageTypeRedirect = "redirect"
	MessageTypePong     = "pong"
	MessageTypeSession  = "session"
)

// InboundMessage is a client request. Scope names the live query for
// subscribe and unsubscribe; ChatID and Month narrow the messages and
// financial scopes.
type InboundMessage struct {
	Type   string `json:"type"`
	Token  string `json:"token,omitempty"`
	Scope  string `json:"scope,omitempty"`
	ChatID string `json:"chatId,omitempty"`
	Month  string `json:"month,omitempty"`
}

type OutboundMessage struct {
	Type      string      `json:"type"`
	Scope     string      `json:"scope,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Code      string      `json:"code,omitempty"`
	Error     string      `json:"error,omitempty"`
	Location  string      `json:"location,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

func DecodeInbound(raw []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return InboundMessage{}, err
	}
	return msg, nil
}

func encode(msg OutboundMessage) []byte {
	frame, err := json.Marshal(msg)
	if err != nil {
		log.Printf("WebSocket: Failed to marshal %s message: %v", msg.Type, err)
		frame, _ = json.Marshal(OutboundMessage{Type: MessageTypeError, Code: "INTERNAL_ERROR", Error: "Erro interno"})
	}
	return frame
}

// EncodeSnapshot wraps the full current result set of one scope.
func EncodeSnapshot(scope string, data interface{}) []byte {
	return encode(OutboundMessage{
		Type:      MessageTypeSnapshot,
		Scope:     scope,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func EncodeError(scope, code, message string) []byte {
	return encode(OutboundMessage{
		Type:  MessageTypeError,
		Scope: scope,
		Code:  code,
		Error: message,
	})
}

// EncodeRedirect tells the client to leave for location, e.g. the login page.
func EncodeRedirect(location string) []byte {
	return encode(OutboundMessage{
		Type:     MessageTypeRedirect,
		Location: location,
	})
}

func EncodePong() []byte {
	return encode(OutboundMessage{
		Type:      MessageTypePong,
		Data:      map[string]string{"status": "alive"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// EncodeSession reports the identity the connection is now signed in as.
func EncodeSession(data interface{}) []byte {
	return encode(OutboundMessage{
		Type: MessageTypeSession,
		Data: data,
	})
}
