package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-pos-ledger/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerChanged_QueuesTypedMessage(t *testing.T) {
	hub := NewHub()

	hub.LedgerChanged(service.ChangeEvent{
		Action: service.ActionOrderDeleted,
		Data:   map[string]interface{}{"orderId": "o-1"},
	})

	select {
	case raw := <-hub.Broadcast:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, EventType, msg["type"])
		assert.Equal(t, service.ActionOrderDeleted, msg["action"])
		assert.Equal(t, "o-1", msg["orderId"])
	case <-time.After(time.Second):
		t.Fatal("no broadcast queued")
	}
}

func TestLedgerChanged_ActionCannotBeOverriddenByData(t *testing.T) {
	hub := NewHub()

	hub.LedgerChanged(service.ChangeEvent{
		Action: service.ActionProductSaved,
		Data:   map[string]interface{}{"type": "other", "action": "other"},
	})

	raw := <-hub.Broadcast
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, EventType, msg["type"])
	assert.Equal(t, service.ActionProductSaved, msg["action"])
	assert.Equal(t, 0, hub.ClientCount())
}

func TestLedgerChanged_KeepsOrderAndDropsWhenFull(t *testing.T) {
	hub := NewHub()

	for i := 0; i < broadcastBuffer+5; i++ {
		hub.LedgerChanged(service.ChangeEvent{
			Action: service.ActionProductionAdded,
			Data:   map[string]interface{}{"seq": i},
		})
	}
	require.Len(t, hub.Broadcast, broadcastBuffer)

	for i := 0; i < broadcastBuffer; i++ {
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(<-hub.Broadcast, &msg))
		assert.EqualValues(t, i, msg["seq"])
	}
}

func TestJoinAndLeave_ReturnAfterShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	finished := make(chan bool, 1)
	go func() {
		ok := hub.Join(nil)
		hub.Leave(nil)
		finished <- ok
	}()
	select {
	case ok := <-finished:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("join blocked after shutdown")
	}
}
