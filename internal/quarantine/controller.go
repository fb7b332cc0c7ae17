// Package quarantine owns the authoritative view of "what mail is
// currently quarantined for the given date range" and the disposition
// actions that mutate it. All visible change flows through a re-fetch,
// so the view never diverges from server truth.
package quarantine

import (
	"context"
	"sync"

	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/reload"
)

// SpamLister fetches the quarantined mail matching a date range.
// Implemented by Gateway; tests inject a fake.
type SpamLister interface {
	ListSpam(ctx context.Context, params model.QueryParams) ([]model.Mail, error)
}

// Controller owns the query parameters and the load state of the
// quarantine list. Fetches run concurrently without cancellation, so
// each one is issued under a sequence token and a completion is only
// applied while its token is still the latest; anything else is a
// response to an abandoned query and is discarded.
type Controller struct {
	lister      SpamLister
	unsubscribe func()

	mu       sync.Mutex
	params   model.QueryParams
	seq      uint64
	fetching bool
	state    model.LoadState[[]model.ListEntry]
}

// NewController creates a list controller subscribed to the given
// coordinator for its lifetime. onInvalidate is invoked, synchronously
// with each bump, so the owner can schedule an unconditional re-fetch;
// it must not block.
func NewController(lister SpamLister, coord *reload.Coordinator, onInvalidate func()) *Controller {
	c := &Controller{lister: lister}
	if coord != nil && onInvalidate != nil {
		c.unsubscribe = coord.Subscribe(func(int) { onInvalidate() })
	}
	return c
}

// Close detaches the controller from the reload coordinator.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// SetParams installs a new date range. It reports whether the value
// differed structurally from the current one; an equal value is a
// no-op so unrelated re-renders never cause redundant fetches.
func (c *Controller) SetParams(params model.QueryParams) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.params.Equal(params) {
		return false
	}
	c.params = params
	return true
}

// Params returns the current query parameters.
func (c *Controller) Params() model.QueryParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// BeginFetch registers a new in-flight fetch and returns its sequence
// token together with the parameters it must run under. Starting a new
// fetch does not cancel earlier ones; it merely outdates their tokens.
// The state re-enters Loading, keeping any loaded entries so the view
// does not blank out during a routine refresh; a previous error is
// superseded.
func (c *Controller) BeginFetch() (seq uint64, params model.QueryParams) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.fetching = true
	c.state = model.LoadState[[]model.ListEntry]{
		Phase: model.Loading,
		Data:  c.state.Data,
	}
	return c.seq, c.params
}

// Apply records a completed fetch. The result is installed only when
// seq is still the most recently issued token; a stale completion is
// discarded without touching state, and Apply reports which happened.
// On error any previously loaded data is dropped so the view shows the
// failure, not stale entries.
func (c *Controller) Apply(seq uint64, mails []model.Mail, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return false
	}
	c.fetching = false

	if err != nil {
		c.state = model.Fail[[]model.ListEntry](err)
		return true
	}
	c.state = model.Succeed(SortAndGroup(mails))
	return true
}

// Fetch performs one synchronous fetch cycle with the current
// parameters. Asynchronous callers use BeginFetch/Apply directly.
func (c *Controller) Fetch(ctx context.Context) bool {
	seq, params := c.BeginFetch()
	mails, err := c.lister.ListSpam(ctx, params)
	return c.Apply(seq, mails, err)
}

// State returns the last applied load state.
func (c *Controller) State() model.LoadState[[]model.ListEntry] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fetching reports whether a fetch is in flight whose result has not
// been applied or outdated yet.
func (c *Controller) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}
