package quarantine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/reload"
)

// ActionPoster executes one disposition action against the gateway.
// Implemented by Gateway; tests inject a fake.
type ActionPoster interface {
	PostAction(ctx context.Context, id string, action model.MailAction) error
}

// Dispatcher executes disposition actions and reports the outcome.
// It never touches the list in memory: every completion, success or
// failure, bumps the reload coordinator exactly once, because a failed
// action may still have partially mutated server state.
type Dispatcher struct {
	poster ActionPoster
	coord  *reload.Coordinator
	log    *zap.Logger
}

// NewDispatcher creates a dispatcher wired to the shared coordinator.
func NewDispatcher(poster ActionPoster, coord *reload.Coordinator, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{poster: poster, coord: coord, log: log}
}

// Dispatch applies action to the message with the given id. The error,
// if any, is returned for a transient notice; there is no retry.
func (d *Dispatcher) Dispatch(ctx context.Context, id string, action model.MailAction) error {
	err := d.poster.PostAction(ctx, id, action)
	d.coord.Bump()

	if err != nil {
		d.log.Warn("mail action failed",
			zap.String("id", id),
			zap.String("action", action.WireToken()),
			zap.Error(err),
		)
		return err
	}

	d.log.Info("mail action applied",
		zap.String("id", id),
		zap.String("action", action.WireToken()),
	)
	return nil
}

// Preview offers the dispatcher's actions scoped to one selected
// message, as used by the detail view. Its only local state is the
// last action error, cleared by an explicit dismiss.
type Preview struct {
	id         string
	dispatcher *Dispatcher

	mu      sync.Mutex
	lastErr error
}

// NewPreview creates a preview controller for the given message id.
func NewPreview(id string, dispatcher *Dispatcher) *Preview {
	return &Preview{id: id, dispatcher: dispatcher}
}

// ID returns the message id this preview is scoped to.
func (p *Preview) ID() string { return p.id }

// Dispatch applies action to the previewed message, recording the
// outcome. The reload coordinator fires either way so the list
// reflects the result when the user navigates back.
func (p *Preview) Dispatch(ctx context.Context, action model.MailAction) error {
	err := p.dispatcher.Dispatch(ctx, p.id, action)

	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	return err
}

// LastError returns the most recent action error, or nil.
func (p *Preview) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// DismissError clears the recorded action error.
func (p *Preview) DismissError() {
	p.mu.Lock()
	p.lastErr = nil
	p.mu.Unlock()
}
