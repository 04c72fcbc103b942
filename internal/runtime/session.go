package runtime

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/celestix/gotgproto/ext"
	gotgprototypes "github.com/celestix/gotgproto/types"
	"github.com/gotd/td/tg"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/sync/errgroup"

	"github.com/tgwatch/tgwatch/internal/balancer"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/health"
	"github.com/tgwatch/tgwatch/internal/log"
	"github.com/tgwatch/tgwatch/internal/pipeline"
	"github.com/tgwatch/tgwatch/internal/repo"
	"github.com/tgwatch/tgwatch/internal/tlg"
	"github.com/tgwatch/tgwatch/internal/types"
)

// statusSinkAdapter adapts AccountRepo to tlg.StatusSink; errors are logged
// rather than surfaced, since the supervisor's run loop has nowhere to
// return them to.
type statusSinkAdapter struct {
	tenantID bson.ObjectID
	accounts *repo.AccountRepo
}

func (s *statusSinkAdapter) SetStatus(ctx context.Context, accountID bson.ObjectID, status types.AccountStatus, lastErr string) {
	if _, err := s.accounts.SetStatus(ctx, s.tenantID, accountID, status, lastErr); err != nil {
		log.GetLogger(log.TlgModule).WithError(err).Warn("could not persist account status transition")
	}
}

// newClientFactory builds a tlg.ClientFactory closed over a tenant's socks
// proxy and app credentials, reading each account's persisted session path
// straight off its AccountDoc rather than re-resolving artifact metadata.
func newClientFactory(appID int, appHash, socksProxy string) tlg.ClientFactory {
	return func(account types.AccountDoc, onMsg tlg.MessageHandler) (tlg.IClient, error) {
		sessCfg := &tlg.SessionConfig{
			SocksProxy:  socksProxy,
			SessionPath: account.SessionArtifactPath,
			AppID:       appID,
			AppHash:     appHash,
			PhoneNumber: account.PhoneNumber,
		}
		return tlg.NewClient(sessCfg, onMsg), nil
	}
}

// newMessageHandler turns one gotgproto update into a pipeline.RawEvent and
// feeds it through p, tagging the event as session-ingested.
func newMessageHandler(tenantID bson.ObjectID, p *pipeline.Pipeline) tlg.MessageHandler {
	ll := log.GetLogger(log.TlgModule).WithField("tenant", tenantID.Hex())
	return func(ctx *ext.Context, u *ext.Update) error {
		msg := u.EffectiveMessage
		if msg == nil {
			return nil
		}
		chat := u.EffectiveChat()
		if chat == nil {
			return nil
		}
		user := u.EffectiveUser()
		var userID int64
		var username, firstName string
		if user != nil {
			userID = user.ID
			username = user.Username
			firstName = user.FirstName
		}
		ev := pipeline.RawEvent{
			TenantID:    tenantID,
			GroupExtID:  chatExternalID(chat.GetID()),
			UserID:      userID,
			Username:    username,
			FullName:    firstName,
			MessageID:   int64(msg.ID),
			Text:        msg.Text,
			MessageType: classifyMessageType(msg),
			MediaInfo:   extractMediaInfo(msg),
			IngestedVia: types.IngestedViaSession,
			At:          time.Unix(int64(msg.Date), 0).UTC(),
		}
		if err := p.Ingest(ctx, ev); err != nil {
			ll.WithError(err).Warn("pipeline ingest failed for session message")
		}
		return nil
	}
}

func classifyMessageType(msg *gotgprototypes.Message) types.MessageType {
	switch media := msg.Media.(type) {
	case nil:
		return types.MessageTypeText
	case *tg.MessageMediaPhoto:
		return types.MessageTypePhoto
	case *tg.MessageMediaDocument:
		document, ok := media.Document.AsNotEmpty()
		if !ok {
			return types.MessageTypeOther
		}
		return classifyDocument(document)
	default:
		return types.MessageTypeOther
	}
}

// classifyDocument mirrors the Bot API's document/video/audio/voice/sticker
// split over gotd's single DocumentClass, attribute-tagged representation.
func classifyDocument(doc *tg.Document) types.MessageType {
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeVideo:
			if a.RoundMessage {
				return types.MessageTypeOther
			}
			return types.MessageTypeVideo
		case *tg.DocumentAttributeAudio:
			if a.Voice {
				return types.MessageTypeVoice
			}
			return types.MessageTypeAudio
		case *tg.DocumentAttributeSticker:
			return types.MessageTypeSticker
		}
	}
	return types.MessageTypeDocument
}

// extractMediaInfo mirrors original_source/backend/server.py's media_info
// shape (file identity plus the handful of fields each media kind carries),
// adapted from gotd's richer Document/Photo attributes.
func extractMediaInfo(msg *gotgprototypes.Message) map[string]any {
	switch media := msg.Media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := media.Photo.AsNotEmpty()
		if !ok {
			return nil
		}
		return map[string]any{"telegram_id": photo.ID}
	case *tg.MessageMediaDocument:
		document, ok := media.Document.AsNotEmpty()
		if !ok {
			return nil
		}
		info := map[string]any{
			"telegram_id": document.ID,
			"mime_type":   document.MimeType,
			"file_size":   document.Size,
		}
		for _, attr := range document.Attributes {
			switch a := attr.(type) {
			case *tg.DocumentAttributeFilename:
				info["file_name"] = a.FileName
			case *tg.DocumentAttributeVideo:
				info["duration"] = a.Duration
			case *tg.DocumentAttributeAudio:
				info["duration"] = a.Duration
				if a.Title != "" {
					info["title"] = a.Title
				}
			}
		}
		return info
	default:
		return nil
	}
}

// signalAdapter approximates health.Signal from an account's persisted
// status and last-activity timestamp. The supervisor keeps no in-memory
// signal of its own, so this is necessarily coarser than a true live
// reconnect/queue-depth measurement.
type signalAdapter struct {
	tenantID bson.ObjectID
	accounts *repo.AccountRepo
	sup      *tlg.Supervisor
}

func (s *signalAdapter) Signal(accountID bson.ObjectID) (health.Signal, bool) {
	account, err := s.accounts.Get(context.Background(), s.tenantID, accountID)
	if err != nil || account == nil {
		return health.Signal{}, false
	}
	return s.signalFor(account)
}

// signalFor is the pure part of Signal, split out so the status-to-signal
// mapping can be tested without a repo.
func (s *signalAdapter) signalFor(account *types.AccountDoc) (health.Signal, bool) {
	var age time.Duration
	if account.LastActivity != nil {
		age = time.Since(*account.LastActivity)
	} else {
		age = time.Hour
	}
	connected := account.Status == types.AccountActive
	reconnects := 0
	if account.Status == types.AccountError {
		reconnects = 3
	}
	return health.Signal{
		Connected:              connected,
		LastEventAge:           age,
		ReconnectCountInWindow: reconnects,
		QueueDepth:             0,
	}, true
}

// restarterAdapter bridges health.Restarter to a running supervisor: it
// stops the account's receiver and starts it again with the account's latest
// persisted document, except when that document's status is error, in which
// case the receiver stays stopped.
type restarterAdapter struct {
	tenantID bson.ObjectID
	accounts *repo.AccountRepo
	sup      *tlg.Supervisor
}

func (r *restarterAdapter) Restart(ctx context.Context, accountID bson.ObjectID) {
	r.sup.Stop(accountID)
	account, err := r.accounts.Get(ctx, r.tenantID, accountID)
	if err != nil || account == nil {
		return
	}
	if account.Status == types.AccountError {
		return
	}
	_ = r.sup.Start(ctx, *account)
}

func chatExternalID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// tenantRuntime owns the supervisor and health monitor for one tenant's
// active accounts. ctx is the runtime's own long-lived context, kept around
// so a later per-account Start (triggered by an HTTP request) derives its
// worker's lifetime from the runtime rather than from the request.
type tenantRuntime struct {
	tenantID   bson.ObjectID
	supervisor *tlg.Supervisor
	monitor    *health.Monitor
	ctx        context.Context
	cancel     context.CancelFunc
}

// Manager builds and runs one tenantRuntime per active organization,
// restarting receivers on failure. Account-to-group assignment is computed
// once, when a tenant runtime starts; later group or account changes do not
// recompute it.
type Manager struct {
	repos        *repo.Container
	pipeline     *pipeline.Pipeline
	appID        int
	appHash      string
	socksProxy   string
	pollInterval time.Duration

	mu       sync.Mutex
	runtimes map[bson.ObjectID]*tenantRuntime
}

// NewManager takes one shared Pipeline: its Groups/WatchUsers/Archive/
// Forward collaborators are already tenant-scoped per call, so a single
// instance serves every tenant's session receivers.
func NewManager(repos *repo.Container, pipeline *pipeline.Pipeline, appID int, appHash, socksProxy string, pollInterval time.Duration) *Manager {
	return &Manager{
		repos:        repos,
		pipeline:     pipeline,
		appID:        appID,
		appHash:      appHash,
		socksProxy:   socksProxy,
		pollInterval: pollInterval,
		runtimes:     map[bson.ObjectID]*tenantRuntime{},
	}
}

// StartTenant launches a supervisor and health monitor for tenantID unless
// one is already running, then starts a receiver for every active account.
func (m *Manager) StartTenant(ctx context.Context, tenantID bson.ObjectID) error {
	m.mu.Lock()
	if _, ok := m.runtimes[tenantID]; ok {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	sink := &statusSinkAdapter{tenantID: tenantID, accounts: m.repos.Accounts}
	factory := newClientFactory(m.appID, m.appHash, m.socksProxy)
	handler := newMessageHandler(tenantID, m.pipeline)
	sup := tlg.NewSupervisor(tenantID, factory, sink, handler)

	monitor := health.NewMonitor(tenantID, m.pollInterval, &signalAdapter{tenantID: tenantID, accounts: m.repos.Accounts, sup: sup}, &restarterAdapter{tenantID: tenantID, accounts: m.repos.Accounts, sup: sup})

	rctx, cancel := context.WithCancel(ctx)
	rt := &tenantRuntime{tenantID: tenantID, supervisor: sup, monitor: monitor, ctx: rctx, cancel: cancel}

	m.mu.Lock()
	m.runtimes[tenantID] = rt
	m.mu.Unlock()

	accounts, err := m.repos.Accounts.ListActive(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := m.rebalance(ctx, tenantID, accounts); err != nil {
		log.GetLogger(log.TlgModule).WithError(err).Warn("could not rebalance group assignment")
	}
	for _, a := range accounts {
		if err := sup.Start(rctx, *a); err != nil {
			log.GetLogger(log.TlgModule).WithError(err).WithField("account", a.ID.Hex()).Warn("could not start account receiver")
		}
	}

	go monitor.Run(rctx, func() []bson.ObjectID {
		ids := sup.Running()
		return ids
	})
	return nil
}

// rebalance recomputes group-to-account assignment for a tenant and
// persists each account's assigned set. Every account's gotgproto session
// already observes every chat it is a member of; the assignment is the
// primary-recorder bookkeeping that lets the dashboard show which account
// is responsible for a group, not a Telegram-level subscribe/unsubscribe.
func (m *Manager) rebalance(ctx context.Context, tenantID bson.ObjectID, accounts []*types.AccountDoc) error {
	groups, err := m.repos.Groups.List(ctx, tenantID, false)
	if err != nil {
		return err
	}
	groupIDs := make([]bson.ObjectID, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.ID
	}
	accountIDs := make([]bson.ObjectID, len(accounts))
	for i, a := range accounts {
		accountIDs[i] = a.ID
	}
	assignment := balancer.Assign(groupIDs, accountIDs)
	byAccount := assignment.ByAccount()
	for _, a := range accounts {
		if _, err := m.repos.Accounts.SetAssignedGroups(ctx, tenantID, a.ID, byAccount[a.ID]); err != nil {
			return err
		}
	}
	return nil
}

// StopTenant cancels a tenant's supervisor and monitor, waiting for every
// receiver goroutine to exit.
func (m *Manager) StopTenant(tenantID bson.ObjectID) {
	m.mu.Lock()
	rt, ok := m.runtimes[tenantID]
	if ok {
		delete(m.runtimes, tenantID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	for _, id := range rt.supervisor.Running() {
		rt.supervisor.Stop(id)
	}
	rt.cancel()
}

// StartAccount starts one account's receiver within its tenant's already
// running runtime, the path HTTP activate drives. The worker is started
// against the runtime's own context, not ctx, so it outlives the request
// that triggered it. A synchronous start failure is persisted as
// AccountError immediately; transient and catastrophic failures the
// receiver hits after this call returns are persisted by the supervisor's
// own run loop via the StatusSink, as always.
func (m *Manager) StartAccount(ctx context.Context, tenantID, accountID bson.ObjectID) error {
	m.mu.Lock()
	rt, ok := m.runtimes[tenantID]
	m.mu.Unlock()
	if !ok {
		return errs.NewNotFound("tenant runtime not running")
	}
	account, err := m.repos.Accounts.Get(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return errs.NewNotFound("account not found")
	}
	if err := rt.supervisor.Start(rt.ctx, *account); err != nil {
		if _, setErr := m.repos.Accounts.SetStatus(ctx, tenantID, accountID, types.AccountError, err.Error()); setErr != nil {
			log.GetLogger(log.TlgModule).WithError(setErr).Warn("could not persist account start failure")
		}
		return err
	}
	return nil
}

// StopAccount stops one account's receiver within its tenant's runtime, if
// both are running, the path HTTP deactivate drives.
func (m *Manager) StopAccount(tenantID, accountID bson.ObjectID) {
	m.mu.Lock()
	rt, ok := m.runtimes[tenantID]
	m.mu.Unlock()
	if !ok {
		return
	}
	rt.supervisor.Stop(accountID)
}

// StartAll launches a runtime for every organization in the system, the
// startup path cmd/serve.go drives once per process.
func (m *Manager) StartAll(ctx context.Context) error {
	orgs, err := m.repos.Organizations.ListAll(ctx)
	if err != nil {
		return err
	}
	// Each goroutine only runs the startup phase concurrently; the long-lived
	// receiver context it derives must outlive this fan-out, so it is built
	// from ctx directly rather than errgroup's group-scoped context.
	var g errgroup.Group
	for _, org := range orgs {
		tenantID := org.ID
		g.Go(func() error {
			return m.StartTenant(ctx, tenantID)
		})
	}
	return g.Wait()
}

// StopAll cancels every running tenant runtime, the shutdown path
// cmd/serve.go drives on SIGINT/SIGTERM.
func (m *Manager) StopAll() {
	m.mu.Lock()
	ids := make([]bson.ObjectID, 0, len(m.runtimes))
	for id := range m.runtimes {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.StopTenant(id)
	}
}
