// Package testutil holds the fakes shared by package tests: an
// in-memory credential cache and a scripted gateway.
package testutil

import (
	"context"
	"sync"

	"github.com/nvu/mailquar/internal/model"
)

// MemoryCache is an in-memory credential cache. The error fields, when
// set, are returned by the corresponding method.
type MemoryCache struct {
	mu    sync.Mutex
	value string

	LoadErr  error
	SaveErr  error
	ClearErr error
}

func (c *MemoryCache) Load() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.LoadErr != nil {
		return "", c.LoadErr
	}
	return c.value, nil
}

func (c *MemoryCache) Save(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SaveErr != nil {
		return c.SaveErr
	}
	c.value = value
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ClearErr != nil {
		return c.ClearErr
	}
	c.value = ""
	return nil
}

// Value returns the currently cached string.
func (c *MemoryCache) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Seed installs a cached value directly.
func (c *MemoryCache) Seed(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// ActionCall records one disposition request received by FakeGateway.
type ActionCall struct {
	ID     string
	Action model.MailAction
}

// FakeGateway is a scripted stand-in for the quarantine gateway. It
// returns the configured mail set or error and records every call.
type FakeGateway struct {
	mu sync.Mutex

	Mails     []model.Mail
	ListErr   error
	ActionErr error

	listCalls []model.QueryParams
	actions   []ActionCall
}

func (g *FakeGateway) ListSpam(_ context.Context, params model.QueryParams) ([]model.Mail, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls = append(g.listCalls, params)
	if g.ListErr != nil {
		return nil, g.ListErr
	}
	out := make([]model.Mail, len(g.Mails))
	copy(out, g.Mails)
	return out, nil
}

func (g *FakeGateway) PostAction(_ context.Context, id string, action model.MailAction) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actions = append(g.actions, ActionCall{ID: id, Action: action})
	return g.ActionErr
}

// ListCalls returns the parameters of every ListSpam call so far.
func (g *FakeGateway) ListCalls() []model.QueryParams {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.QueryParams, len(g.listCalls))
	copy(out, g.listCalls)
	return out
}

// Actions returns every disposition call received so far.
func (g *FakeGateway) Actions() []ActionCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ActionCall, len(g.actions))
	copy(out, g.actions)
	return out
}
