package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/notify"
	"github.com/tasmanlabs/orgauth/internal/auth/store/drivers/sqlite"
	"github.com/tasmanlabs/orgauth/pkg/cryptox"
	"github.com/tasmanlabs/orgauth/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

const testIssuer = "orgauth-test"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestCodec(t *testing.T, secret string, ttl time.Duration) *jwtx.Codec {
	t.Helper()

	c, err := jwtx.NewCodec(secret, testIssuer, ttl)
	require.NoError(t, err)
	return c
}

func newSessionService(t *testing.T) *SessionService {
	t.Helper()

	return &SessionService{
		Store:   newTestStore(t),
		Access:  newTestCodec(t, "access-secret", jwtx.DefaultAccessTokenTTL),
		Refresh: newTestCodec(t, "refresh-secret", jwtx.DefaultRefreshTokenTTL),
	}
}

// captureNotifier records every message it is asked to send. Safe for
// concurrent use.
type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *captureNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *captureNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
