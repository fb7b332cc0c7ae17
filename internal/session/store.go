// Package session owns the authenticated session against the mail
// gateway: restoring a persisted credential at startup, exchanging a
// one-time quarantine ticket or interactive password for an auth
// ticket, keeping that ticket fresh, and making login/logout
// observable.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nvu/mailquar/internal/credential"
)

// Credential is the authenticated session token attached to gateway
// requests, plus the identity it was issued for. At most one is live;
// a new login replaces it wholesale.
type Credential struct {
	Username  string `json:"username"`
	Realm     string `json:"realm"`
	Ticket    string `json:"ticket"`
	CSRFToken string `json:"csrf_token"`
}

// Cache persists a serialized credential between runs. It is the
// terminal analogue of the browser cookie the gateway UI relies on.
type Cache interface {
	Load() (string, error)
	Save(value string) error
	Clear() error
}

// cacheKey is the keyring entry holding the serialized credential.
const cacheKey = "auth-ticket"

// KeyringCache stores the credential in the system keyring.
type KeyringCache struct{}

func (KeyringCache) Load() (string, error)  { return credential.Get(cacheKey) }
func (KeyringCache) Save(v string) error    { return credential.Set(cacheKey, v) }
func (KeyringCache) Clear() error           { return credential.Delete(cacheKey) }

// Exchanger performs the authentication exchange call. Implemented by
// the api client; narrowed to an interface so tests inject a fake.
type Exchanger interface {
	Post(ctx context.Context, path string, body, result interface{}) error
}

// ticketRequest is the body of an /access/ticket exchange. For ticket
// auto-login the password field carries the one-time quarantine ticket.
type ticketRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Path     string `json:"path,omitempty"`
}

// ticketResponse is the data portion of an /access/ticket reply.
type ticketResponse struct {
	Username            string `json:"username"`
	Ticket              string `json:"ticket"`
	CSRFPreventionToken string `json:"CSRFPreventionToken"`
}

// Observer receives logged-in transitions: true after a login, false
// after a logout.
type Observer func(loggedIn bool)

type observerEntry struct {
	fn      Observer
	removed bool
}

// Store holds the process's single credential and makes its lifecycle
// observable. All writes go through its methods; other components only
// ever read.
type Store struct {
	client          Exchanger
	cache           Cache
	log             *zap.Logger
	refreshInterval time.Duration

	mu              sync.Mutex
	cred            *Credential
	observers       []*observerEntry
	redirectPending bool
	refreshStop     chan struct{}
}

// NewStore creates a session store. The refresh interval controls how
// often an established ticket is re-exchanged; zero disables the loop.
func NewStore(client Exchanger, cache Cache, refreshInterval time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		client:          client,
		cache:           cache,
		log:             log,
		refreshInterval: refreshInterval,
	}
}

// SetClient wires the exchange client after construction. The api
// client reads credentials from this store, so the two reference each
// other and one side has to be attached late.
func (s *Store) SetClient(client Exchanger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

// AuthTokens implements the api client's credential source: the client
// reads the ticket for the duration of one request and holds nothing.
func (s *Store) AuthTokens() (ticket, csrf string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return "", "", false
	}
	return s.cred.Ticket, s.cred.CSRFToken, true
}

// Current returns a copy of the live credential, if any.
func (s *Store) Current() (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return Credential{}, false
	}
	return *s.cred, true
}

// LoggedIn reports whether a credential is live.
func (s *Store) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

// Restore reads the persisted credential. Malformed or absent data is
// treated as "no session"; no error surfaces and no network call is
// made. Returns whether a session was restored.
func (s *Store) Restore() bool {
	raw, err := s.cache.Load()
	if err != nil || raw == "" {
		return false
	}

	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		s.log.Debug("discarding malformed cached credential", zap.Error(err))
		return false
	}
	if cred.Ticket == "" || cred.Username == "" {
		s.log.Debug("discarding incomplete cached credential")
		return false
	}

	s.mu.Lock()
	s.cred = &cred
	s.mu.Unlock()
	return true
}

// LoginWithTicket exchanges a one-time quarantine ticket for a full
// credential. On success the credential is installed and observers are
// notified; on failure the session stays unauthenticated and the error
// is returned for a transient notice. There is no retry.
func (s *Store) LoginWithTicket(ctx context.Context, login TicketLogin) error {
	cred, err := s.exchange(ctx, login.Username, login.Ticket)
	if err != nil {
		s.log.Error("ticket login failed",
			zap.String("username", login.Username),
			zap.Error(err),
		)
		return err
	}

	s.SetAuthenticated(cred)
	return nil
}

// Login performs an interactive username/password exchange. The realm
// is joined into the gateway's user@realm form when not already part
// of the username.
func (s *Store) Login(ctx context.Context, username, realm, password string) error {
	user := username
	if realm != "" && !containsRealm(username) {
		user = username + "@" + realm
	}

	cred, err := s.exchange(ctx, user, password)
	if err != nil {
		s.log.Warn("login failed", zap.String("username", user), zap.Error(err))
		return err
	}

	s.SetAuthenticated(cred)
	return nil
}

// SetAuthenticated installs a credential, persists it, notifies
// observers, and marks the pending return-to-root signal so the caller
// drops any one-time ticket it entered with.
func (s *Store) SetAuthenticated(cred Credential) {
	s.mu.Lock()
	s.cred = &cred
	s.redirectPending = true
	s.mu.Unlock()

	if data, err := json.Marshal(cred); err == nil {
		if err := s.cache.Save(string(data)); err != nil {
			s.log.Warn("persisting credential failed", zap.Error(err))
		}
	}

	s.notify(true)
}

// ConsumeRedirect reports and clears the pending return-to-root
// signal set by a completed login.
func (s *Store) ConsumeRedirect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.redirectPending
	s.redirectPending = false
	return pending
}

// Logout clears the credential, removes the persisted copy, and
// notifies observers.
func (s *Store) Logout() {
	s.StopRefresh()

	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()

	if err := s.cache.Clear(); err != nil {
		s.log.Debug("clearing cached credential failed", zap.Error(err))
	}

	s.notify(false)
}

// Subscribe registers an observer for logged-in transitions and
// returns a handle that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	entry := &observerEntry{fn: fn}
	s.observers = append(s.observers, entry)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if entry.removed {
			return
		}
		entry.removed = true
		for i, e := range s.observers {
			if e == entry {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				break
			}
		}
	}
}

// StartRefresh launches the background loop that re-exchanges the
// current ticket before it expires. Safe to call once per session;
// stops on Logout or StopRefresh.
func (s *Store) StartRefresh() {
	if s.refreshInterval <= 0 {
		return
	}

	s.mu.Lock()
	if s.refreshStop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.refreshStop = stop
	s.mu.Unlock()

	go s.refreshLoop(stop)
}

// StopRefresh halts the refresh loop if it is running.
func (s *Store) StopRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshStop != nil {
		close(s.refreshStop)
		s.refreshStop = nil
	}
}

// refreshLoop periodically re-exchanges the ticket. A refresh failure
// is logged and retried at the next tick; it never logs the user out
// mid-session.
func (s *Store) refreshLoop(stop chan struct{}) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			cred, ok := s.Current()
			if !ok {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			fresh, err := s.exchange(ctx, cred.Username, cred.Ticket)
			cancel()
			if err != nil {
				s.log.Warn("ticket refresh failed", zap.Error(err))
				continue
			}

			s.mu.Lock()
			// Only install if the session was not replaced meanwhile.
			if s.cred != nil && s.cred.Username == fresh.Username {
				s.cred = &fresh
			}
			s.mu.Unlock()

			if data, err := json.Marshal(fresh); err == nil {
				_ = s.cache.Save(string(data))
			}
		}
	}
}

// exchange performs one /access/ticket call and maps the reply to a
// Credential.
func (s *Store) exchange(ctx context.Context, username, password string) (Credential, error) {
	var resp ticketResponse
	err := s.client.Post(ctx, "/access/ticket", ticketRequest{
		Username: username,
		Password: password,
		Path:     "quarantine",
	}, &resp)
	if err != nil {
		return Credential{}, err
	}

	_, realm := splitRealm(resp.Username)
	return Credential{
		Username:  resp.Username,
		Realm:     realm,
		Ticket:    resp.Ticket,
		CSRFToken: resp.CSRFPreventionToken,
	}, nil
}

// notify invokes observers outside the lock, skipping any removed
// during delivery.
func (s *Store) notify(loggedIn bool) {
	s.mu.Lock()
	snapshot := make([]*observerEntry, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.Unlock()

	for _, entry := range snapshot {
		s.mu.Lock()
		skip := entry.removed
		s.mu.Unlock()
		if skip {
			continue
		}
		entry.fn(loggedIn)
	}
}

func containsRealm(username string) bool {
	_, realm := splitRealm(username)
	return realm != ""
}

// splitRealm separates the realm suffix of a gateway username. The
// quarantine realm uses full mail addresses as usernames, so only the
// last @-separated field can be the realm.
func splitRealm(username string) (user, realm string) {
	for i := len(username) - 1; i >= 0; i-- {
		if username[i] == '@' {
			return username[:i], username[i+1:]
		}
	}
	return username, ""
}
