package quarantine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/reload"
	"github.com/nvu/mailquar/tests/testutil"
)

func TestControllerSetParams(t *testing.T) {
	c := NewController(&testutil.FakeGateway{}, nil, nil)

	params := model.QueryParams{StartTime: model.Epoch(100), EndTime: model.Epoch(200)}
	assert.True(t, c.SetParams(params))

	// A structurally equal value is a no-op even through fresh pointers.
	same := model.QueryParams{StartTime: model.Epoch(100), EndTime: model.Epoch(200)}
	assert.False(t, c.SetParams(same))

	assert.True(t, c.SetParams(model.QueryParams{StartTime: model.Epoch(100)}))
	assert.True(t, c.Params().Equal(model.QueryParams{StartTime: model.Epoch(100)}))
}

func TestControllerFetchSuccess(t *testing.T) {
	gw := &testutil.FakeGateway{Mails: []model.Mail{
		{ID: "1", Time: 1000},
		{ID: "2", Time: 2000},
	}}
	c := NewController(gw, nil, nil)
	c.SetParams(model.QueryParams{StartTime: model.Epoch(1)})

	assert.True(t, c.Fetch(context.Background()))

	state := c.State()
	require.Equal(t, model.Loaded, state.Phase)
	assert.False(t, c.Fetching())

	// The fetch ran under the installed params.
	calls := gw.ListCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Equal(model.QueryParams{StartTime: model.Epoch(1)}))
}

func TestControllerFetchFailureDropsData(t *testing.T) {
	gw := &testutil.FakeGateway{Mails: []model.Mail{{ID: "1", Time: 1000}}}
	c := NewController(gw, nil, nil)

	require.True(t, c.Fetch(context.Background()))
	require.Equal(t, model.Loaded, c.State().Phase)

	gw.ListErr = errors.New("gateway unreachable")
	require.True(t, c.Fetch(context.Background()))

	state := c.State()
	assert.Equal(t, model.Failed, state.Phase)
	assert.EqualError(t, state.Err, "gateway unreachable")
	assert.Nil(t, state.Data)
}

func TestControllerStaleFetchDiscarded(t *testing.T) {
	c := NewController(&testutil.FakeGateway{}, nil, nil)

	c.SetParams(model.QueryParams{StartTime: model.Epoch(1)})
	seqA, _ := c.BeginFetch()

	c.SetParams(model.QueryParams{StartTime: model.Epoch(2)})
	seqB, _ := c.BeginFetch()

	// A completes after B was issued: discarded without touching state.
	assert.False(t, c.Apply(seqA, []model.Mail{{ID: "stale", Time: 1000}}, nil))
	assert.Equal(t, model.Loading, c.State().Phase)
	assert.Empty(t, c.State().Data)
	assert.True(t, c.Fetching())

	assert.True(t, c.Apply(seqB, []model.Mail{{ID: "fresh", Time: 1000}}, nil))

	state := c.State()
	require.Equal(t, model.Loaded, state.Phase)
	require.Len(t, state.Data, 2)
	assert.Equal(t, "fresh", state.Data[1].Mail.ID)
	assert.False(t, c.Fetching())
}

func TestControllerLoadingKeepsEntries(t *testing.T) {
	gw := &testutil.FakeGateway{Mails: []model.Mail{{ID: "1", Time: 1000}}}
	c := NewController(gw, nil, nil)

	require.True(t, c.Fetch(context.Background()))
	require.Equal(t, model.Loaded, c.State().Phase)

	// A refresh keeps the loaded rows visible while in flight.
	seq, _ := c.BeginFetch()
	state := c.State()
	assert.Equal(t, model.Loading, state.Phase)
	require.Len(t, state.Data, 2)
	assert.Equal(t, "1", state.Data[1].Mail.ID)

	require.True(t, c.Apply(seq, nil, errors.New("down")))
	state = c.State()
	assert.Equal(t, model.Failed, state.Phase)
	assert.Nil(t, state.Data)
}

func TestControllerLoadingSupersedesError(t *testing.T) {
	gw := &testutil.FakeGateway{ListErr: errors.New("down")}
	c := NewController(gw, nil, nil)

	require.True(t, c.Fetch(context.Background()))
	require.Equal(t, model.Failed, c.State().Phase)

	c.BeginFetch()
	state := c.State()
	assert.Equal(t, model.Loading, state.Phase)
	assert.NoError(t, state.Err)
}

func TestControllerStaleErrorDiscarded(t *testing.T) {
	c := NewController(&testutil.FakeGateway{}, nil, nil)

	seqA, _ := c.BeginFetch()
	seqB, _ := c.BeginFetch()

	require.True(t, c.Apply(seqB, []model.Mail{{ID: "b", Time: 1000}}, nil))
	assert.False(t, c.Apply(seqA, nil, errors.New("late failure")))

	assert.Equal(t, model.Loaded, c.State().Phase)
}

func TestControllerReloadSubscription(t *testing.T) {
	coord := reload.New()

	invalidated := 0
	c := NewController(&testutil.FakeGateway{}, coord, func() { invalidated++ })

	coord.Bump()
	coord.Bump()
	assert.Equal(t, 2, invalidated)

	c.Close()
	coord.Bump()
	assert.Equal(t, 2, invalidated)
}
