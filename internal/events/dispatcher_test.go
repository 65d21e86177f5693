package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventTicketAssigned, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventTicketClosed, func(_ context.Context, e Event) error {
		t.Fatal("closed handler must not receive assigned events")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventTicketAssigned, TicketID: "t1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].TicketID)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	reached := false
	d.Subscribe(EventSLAViolation, func(context.Context, Event) error {
		return errors.New("delivery failed")
	})
	d.Subscribe(EventSLAViolation, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSLAViolation})
	require.NoError(t, err)
	assert.True(t, reached)
}
