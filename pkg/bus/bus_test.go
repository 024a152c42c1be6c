package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutSubscriberIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Publish(Event{Kind: KindTurnStarted}) })
}

func TestSubscribeThenPublishDelivers(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	b.Publish(Event{Kind: KindTurnStarted, TurnID: "t1"})

	ev := <-ch
	assert.Equal(t, KindTurnStarted, ev.Kind)
	assert.Equal(t, "t1", ev.TurnID)
}

func TestPublishNeverBlocksWhenSubscriberChannelFull(t *testing.T) {
	b := New()
	b.Subscribe()
	for i := 0; i < capacity+10; i++ {
		assert.NotPanics(t, func() { b.Publish(Event{Kind: KindOutputDelta}) })
	}
}

func TestConcurrentSubscribeAndPublishDoNotRace(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			b.Subscribe()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			b.Publish(Event{Kind: KindOutputDelta})
		}
	}()

	wg.Wait()
}

func TestResubscribeClosesPreviousChannel(t *testing.T) {
	b := New()
	first := b.Subscribe()
	b.Subscribe()

	_, ok := <-first
	require.False(t, ok, "previous subscriber channel should be closed on resubscribe")
}
