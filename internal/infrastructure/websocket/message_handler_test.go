package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRedirect(t *testing.T) {
	assert.JSONEq(t, `{"type":"redirect","location":"/login"}`, string(EncodeRedirect("/login")))
}

func TestEncodeSnapshot(t *testing.T) {
	frame := EncodeSnapshot("chats", []map[string]string{{"id": "c1"}})

	var msg OutboundMessage
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.Equal(t, "chats", msg.Scope)
	assert.NotEmpty(t, msg.Timestamp)
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "c1"}}, msg.Data)
}

func TestEncodeSnapshotKeepsEmptyList(t *testing.T) {
	frame := EncodeSnapshot("messages", []string{})
	assert.Contains(t, string(frame), `"data":[]`)
}

func TestEncodeError(t *testing.T) {
	assert.JSONEq(t,
		`{"type":"error","scope":"messages","code":"FORBIDDEN","error":"sem acesso"}`,
		string(EncodeError("messages", "FORBIDDEN", "sem acesso")))
}

func TestEncodeUnmarshalableFallsBackToError(t *testing.T) {
	frame := EncodeSnapshot("chats", make(chan int))

	var msg OutboundMessage
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, "INTERNAL_ERROR", msg.Code)
}

func TestDecodeInbound(t *testing.T) {
	msg, err := DecodeInbound([]byte(`{"type":"subscribe","scope":"messages","chatId":"c1"}`))
	require.NoError(t, err)
	assert.Equal(t, InboundMessage{Type: MessageTypeSubscribe, Scope: "messages", ChatID: "c1"}, msg)

	_, err = DecodeInbound([]byte(`not json`))
	assert.Error(t, err)
}

func TestClientEnqueueClosesWhenFull(t *testing.T) {
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}

	assert.True(t, c.Enqueue([]byte("a")))
	assert.False(t, c.Enqueue([]byte("b")))
	assert.False(t, c.Enqueue([]byte("c")))

	frame, ok := <-c.Send
	assert.True(t, ok)
	assert.Equal(t, "a", string(frame))
	_, ok = <-c.Send
	assert.False(t, ok)

	c.close()
}
