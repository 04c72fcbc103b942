package tlg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/glebarez/sqlite"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/telegram"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/log"
)

// MessageHandler receives one inbound message event from the account's
// session. Events are not filtered by the account's assigned groups: every
// chat the session observes reaches the handler. It is invoked on the
// gotgproto dispatcher's goroutine and must not block.
type MessageHandler func(ctx *ext.Context, u *ext.Update) error

// IClient wraps a single account's Telegram user-account connection.
type IClient interface {
	Connect() error
	Disconnect()
	GetClient() *gotgproto.Client
}

type client struct {
	sessCfg *SessionConfig
	client  *gotgproto.Client
	onMsg   MessageHandler
}

// NewClient builds an unconnected receiver for one account's session
// artifact. Connect opens the network connection; the returned client does
// not retry on its own, that is the supervisor's job.
func NewClient(sessCfg *SessionConfig, onMsg MessageHandler) IClient {
	return &client{sessCfg: sessCfg, onMsg: onMsg}
}

func (tc *client) Connect() error {
	ll := tc.getLogger("Connect")
	if tc.client != nil {
		ll.Warn("client is already connected")
		return nil
	}
	ll.Info("connecting to tg")
	cl, err := tc.getTgClient()
	if err != nil {
		return classifyConnectErr(err)
	}
	tc.client = cl
	return nil
}

func (tc *client) Disconnect() {
	if tc.client == nil {
		return
	}
	tc.client.Stop()
	tc.client = nil
}

func (tc *client) GetClient() *gotgproto.Client {
	return tc.client
}

func (tc *client) getTgClient() (*gotgproto.Client, error) {
	ll := tc.getLogger("getTgClient")
	sessCfg := tc.sessCfg
	if err := os.MkdirAll(filepath.Dir(sessCfg.SessionPath), os.ModePerm); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("can not create session dir: %s", err)
	}
	ll.Infof("session path: %s", sessCfg.SessionPath)
	sessionType := sessionMaker.SqlSession(sqlite.Open(sessCfg.SessionPath))
	clOpts := gotgproto.ClientOpts{
		Session:          sessionType,
		DisableCopyright: true,
		Middlewares:      tc.getMiddlewares(),
	}
	if resolver, err := sessCfg.getSocksDialer(); err != nil {
		ll.WithError(err).Error("can not get socks dialer. using default")
	} else if resolver != nil {
		ll.Infof("using socks dialer")
		clOpts.Resolver = *resolver
	}
	cl, err := gotgproto.NewClient(
		sessCfg.AppID,
		sessCfg.AppHash,
		gotgproto.ClientTypePhone(sessCfg.PhoneNumber),
		&clOpts,
	)
	if err != nil {
		return nil, fmt.Errorf("can not create gotgproto client: %w", err)
	}
	if tc.onMsg != nil {
		cl.Dispatcher.AddHandler(handlers.NewMessage(filters.Message.All, handlers.CallbackResponse(tc.onMsg)))
	}
	return cl, nil
}

func (tc *client) getMiddlewares() []telegram.Middleware {
	return []telegram.Middleware{
		floodwait.NewSimpleWaiter().WithMaxRetries(10).WithMaxWait(5 * time.Second),
		ratelimit.New(rate.Every(time.Millisecond*100), 5),
	}
}

func (tc *client) getLogger(fn string) *logrus.Entry {
	return log.GetLogger(log.TlgModule).WithField("func", fmt.Sprintf("%T.%s", tc, fn))
}

// classifyConnectErr marks session-level auth failures as ArtifactInvalid so
// the supervisor escalates without retrying, per the account's "catastrophic
// artifact errors ... never retry until operator action" failure semantics.
func classifyConnectErr(err error) error {
	msg := err.Error()
	for _, sub := range []string{"AUTH_KEY", "SESSION_REVOKED", "database disk image is malformed", "no such file"} {
		if strings.Contains(msg, sub) {
			return errs.NewArtifactInvalid(fmt.Sprintf("session artifact unusable: %s", err))
		}
	}
	return errs.WrapUpstreamTransient(err, "connecting tg client")
}
