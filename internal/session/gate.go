// Package session decides what the dashboard shell shows: database setup,
// sign-in, the organization setup wizard, or the dashboard itself.
package session

import (
	"context"
	"sync"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State string

const (
	Initializing        State = "initializing"
	NeedsDatabaseConfig State = "needs_database_config"
	NeedsAuth           State = "needs_auth"
	NeedsOrgSetup       State = "needs_org_setup"
	Ready               State = "ready"
)

const (
	DefaultCheckTimeout = 10 * time.Second
	DefaultWatchdog     = 10 * time.Second
)

// Snapshot is the gate state as seen by the shell.
type Snapshot struct {
	State     State      `json:"state"`
	AuthError string     `json:"auth_error,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Email     string     `json:"email,omitempty"`
}

// OrgChecker reports whether a user belongs to any organization.
type OrgChecker interface {
	HasUserOrganizations(ctx context.Context, userID *uuid.UUID) (bool, error)
}

type Gate struct {
	evaluator *Evaluator
	logger    *zap.Logger
	watchdog  time.Duration

	mu          sync.Mutex
	state       State
	authErr     string
	session     *models.Session
	checking    bool
	checkedFor  string
	timer       *time.Timer
	unsubscribe func()
	nextID      int
	listeners   map[int]func(Snapshot)
}

func NewGate(configured bool, auth services.AuthService, orgs OrgChecker, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		evaluator: &Evaluator{Configured: configured, Auth: auth, Orgs: orgs, CheckTimeout: DefaultCheckTimeout, Logger: logger},
		logger:    logger,
		watchdog:  DefaultWatchdog,
		state:     Initializing,
		listeners: map[int]func(Snapshot){},
	}
}

// Start resolves the initial state from accessToken. If resolution stalls,
// the watchdog moves the gate out of Initializing without cancelling it.
func (g *Gate) Start(ctx context.Context, accessToken string) Snapshot {
	g.mu.Lock()
	g.timer = time.AfterFunc(g.watchdog, g.watchdogFired)
	g.mu.Unlock()

	if !g.evaluator.Configured {
		g.transition(NeedsDatabaseConfig, "")
		return g.Snapshot()
	}
	if g.evaluator.Auth == nil {
		g.transition(NeedsAuth, "")
		return g.Snapshot()
	}

	g.mu.Lock()
	g.unsubscribe = g.evaluator.Auth.Subscribe(g.onSessionEvent)
	g.mu.Unlock()

	session, err := g.evaluator.Auth.GetSession(ctx, accessToken)
	switch {
	case err != nil:
		g.transition(NeedsAuth, err.Error())
	case session == nil:
		g.transition(NeedsAuth, "")
	default:
		g.signedIn(ctx, session)
	}
	return g.Snapshot()
}

// Close stops the watchdog and the session subscription.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
	}
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

func (g *Gate) watchdogFired() {
	g.mu.Lock()
	if g.state != Initializing {
		g.mu.Unlock()
		return
	}
	g.logger.Warn("session gate watchdog fired, leaving initializing")
	g.setLocked(NeedsAuth, g.authErr)
}

func (g *Gate) onSessionEvent(event models.SessionEvent) {
	switch event.Type {
	case models.SessionSignedIn:
		if event.Session != nil {
			g.signedIn(context.Background(), event.Session)
		}
	case models.SessionSignedOut:
		g.signedOut()
	}
}

// signedIn runs the organization check once per session. A check already in
// flight is not duplicated; when it finishes for a session that has since been
// replaced, the same flight checks the current session.
func (g *Gate) signedIn(ctx context.Context, session *models.Session) {
	g.mu.Lock()
	g.session = session
	g.authErr = ""
	if g.checking || g.checkedFor == session.SessionID {
		g.mu.Unlock()
		return
	}
	g.checking = true
	g.mu.Unlock()

	for {
		userID := session.UserID
		next := g.evaluator.checkOrganizations(ctx, &userID)

		g.mu.Lock()
		current := g.session
		switch {
		case current != nil && current.SessionID == session.SessionID:
			g.checking = false
			g.checkedFor = session.SessionID
			g.setLocked(next, "")
			return
		case current == nil || current.SessionID == g.checkedFor:
			g.checking = false
			g.mu.Unlock()
			return
		}
		session = current
		g.mu.Unlock()
	}
}

func (g *Gate) signedOut() {
	g.mu.Lock()
	g.session = nil
	g.checkedFor = ""
	g.setLocked(NeedsAuth, "")
}

// SignIn authenticates and moves to NeedsOrgSetup or Ready. On failure the
// gate stays in NeedsAuth with the error attached.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := g.evaluator.Auth.SignIn(ctx, email, password)
	if err != nil {
		g.transition(NeedsAuth, err.Error())
		return nil, err
	}
	g.signedIn(ctx, session)
	return session, nil
}

// SignUp registers the user. The gate stays in NeedsAuth and carries the
// confirmation message.
func (g *Gate) SignUp(ctx context.Context, req *services.SignUpRequest) (*services.SignUpResult, error) {
	result, err := g.evaluator.Auth.SignUp(ctx, req)
	if err != nil {
		g.transition(NeedsAuth, err.Error())
		return nil, err
	}
	g.transition(NeedsAuth, result.Message)
	return result, nil
}

// CompleteSetup is called once the setup wizard has created the
// organization.
func (g *Gate) CompleteSetup() {
	g.mu.Lock()
	if g.state != NeedsOrgSetup {
		g.mu.Unlock()
		return
	}
	g.setLocked(Ready, "")
}

func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	session := g.session
	g.mu.Unlock()

	if session != nil {
		if err := g.evaluator.Auth.SignOut(ctx, session.AccessToken); err != nil {
			return err
		}
	}
	g.signedOut()
	return nil
}

// Session returns the signed-in session, if any.
func (g *Gate) Session() *models.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Subscribe registers fn for every state change and returns the function
// that removes it.
func (g *Gate) Subscribe(fn func(Snapshot)) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

func (g *Gate) transition(state State, authErr string) {
	g.mu.Lock()
	g.setLocked(state, authErr)
}

// setLocked must be called with g.mu held and releases it before notifying
// listeners.
func (g *Gate) setLocked(state State, authErr string) {
	g.state = state
	g.authErr = authErr
	if state != Initializing && g.timer != nil {
		g.timer.Stop()
	}
	snap := g.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(g.listeners))
	for _, fn := range g.listeners {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	g.logger.Debug("session gate state", zap.String("state", string(state)))
	for _, fn := range fns {
		fn(snap)
	}
}

func (g *Gate) snapshotLocked() Snapshot {
	snap := Snapshot{State: g.state, AuthError: g.authErr}
	if g.session != nil {
		id := g.session.UserID
		snap.UserID = &id
		snap.Email = g.session.Email
	}
	return snap
}

// Evaluator applies the gate rules to a single request without keeping
// state.
type Evaluator struct {
	Configured   bool
	Auth         services.AuthService
	Orgs         OrgChecker
	CheckTimeout time.Duration
	Logger       *zap.Logger
}

func (e *Evaluator) Evaluate(ctx context.Context, accessToken string) Snapshot {
	if !e.Configured {
		return Snapshot{State: NeedsDatabaseConfig}
	}
	if e.Auth == nil {
		return Snapshot{State: NeedsAuth}
	}
	session, err := e.Auth.GetSession(ctx, accessToken)
	if err != nil {
		return Snapshot{State: NeedsAuth, AuthError: err.Error()}
	}
	if session == nil {
		return Snapshot{State: NeedsAuth}
	}
	userID := session.UserID
	return Snapshot{
		State:  e.checkOrganizations(ctx, &userID),
		UserID: &userID,
		Email:  session.Email,
	}
}

// checkOrganizations fails open: an error or a timeout yields NeedsOrgSetup.
func (e *Evaluator) checkOrganizations(ctx context.Context, userID *uuid.UUID) State {
	if e.Orgs == nil {
		return Ready
	}
	after := e.CheckTimeout
	if after <= 0 {
		after = DefaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, after)
	defer cancel()

	type result struct {
		has bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		has, err := e.Orgs.HasUserOrganizations(ctx, userID)
		done <- result{has, err}
	}()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		r.err = &common.TimeoutError{Op: "organization check", After: after}
	}
	if r.err != nil {
		e.log().Warn("organization check failed, showing setup", zap.Error(r.err))
		return NeedsOrgSetup
	}
	if r.has {
		return Ready
	}
	return NeedsOrgSetup
}

func (e *Evaluator) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
