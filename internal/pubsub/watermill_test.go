package pubsub

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBridge_PublishSubscribe(t *testing.T) {
	bridge := NewWatermillBridge(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	err := bridge.Subscribe(ctx, "auth.session.abc", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(ctx, Message{
		Topic:    "auth.session.abc",
		Payload:  []byte(`{"signed_in":true}`),
		Metadata: map[string]string{"browser_id": "abc"},
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "auth.session.abc", msg.Topic)
		assert.JSONEq(t, `{"signed_in":true}`, string(msg.Payload))
		assert.Equal(t, "abc", msg.Metadata["browser_id"])
		_, leaked := msg.Metadata[metaKeyTopic]
		assert.False(t, leaked)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestWatermillBridge_OtherTopicsNotDelivered(t *testing.T) {
	bridge := NewWatermillBridge(nil)
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	require.NoError(t, bridge.Subscribe(ctx, "a", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	}))
	require.NoError(t, bridge.Publish(ctx, Message{Topic: "b", Payload: []byte("x")}))

	select {
	case msg := <-received:
		t.Fatalf("unexpected message on topic %q", msg.Topic)
	case <-time.After(100 * time.Millisecond):
	}
}
