package reload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBumpIncrementsVersion(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.Version())

	c.Bump()
	c.Bump()
	assert.Equal(t, 2, c.Version())
}

func TestListenersInvokedInRegistrationOrder(t *testing.T) {
	c := New()

	var order []string
	c.Subscribe(func(int) { order = append(order, "first") })
	c.Subscribe(func(int) { order = append(order, "second") })
	c.Subscribe(func(int) { order = append(order, "third") })

	c.Bump()
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestListenerReceivesNewVersion(t *testing.T) {
	c := New()

	var got []int
	c.Subscribe(func(v int) { got = append(got, v) })

	c.Bump()
	c.Bump()
	c.Bump()

	// Rapid bumps are never coalesced.
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	c := New()

	calls := 0
	unsubscribe := c.Subscribe(func(int) { calls++ })

	c.Bump()
	unsubscribe()
	c.Bump()

	assert.Equal(t, 1, calls)

	// Unsubscribing twice is harmless.
	unsubscribe()
	c.Bump()
	assert.Equal(t, 1, calls)
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	c := New()

	var order []string
	var removeSecond func()

	c.Subscribe(func(int) {
		order = append(order, "first")
		removeSecond()
	})
	removeSecond = c.Subscribe(func(int) { order = append(order, "second") })
	c.Subscribe(func(int) { order = append(order, "third") })

	c.Bump()
	require.Equal(t, []string{"first", "third"}, order)

	c.Bump()
	assert.Equal(t, []string{"first", "third", "first", "third"}, order)
}

func TestListenerSubscribedDuringDeliveryMissesCurrentBump(t *testing.T) {
	c := New()

	lateCalls := 0
	c.Subscribe(func(int) {
		if lateCalls == 0 {
			c.Subscribe(func(int) { lateCalls++ })
		}
	})

	c.Bump()
	assert.Equal(t, 0, lateCalls)

	c.Bump()
	assert.Equal(t, 1, lateCalls)
}
