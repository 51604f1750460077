package copytables

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seldebrings/sls-copy-stack-tables/internal/testutil"
)

type logEntry struct {
	level slog.Level
	msg   string
	attrs map[string]slog.Value
}

// captureHandler records every log entry. Stages log from many goroutines.
type captureHandler struct {
	mu   *sync.Mutex
	logs *[]logEntry
}

func newCaptureLogger() (*slog.Logger, func() []logEntry) {
	var (
		mu   sync.Mutex
		logs []logEntry
	)
	logger := slog.New(&captureHandler{mu: &mu, logs: &logs})
	return logger, func() []logEntry {
		mu.Lock()
		defer mu.Unlock()
		return append([]logEntry(nil), logs...)
	}
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	entry := logEntry{level: r.Level, msg: r.Message, attrs: make(map[string]slog.Value)}
	r.Attrs(func(a slog.Attr) bool {
		entry.attrs[a.Key] = a.Value
		return true
	})

	h.mu.Lock()
	*h.logs = append(*h.logs, entry)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

func (h *captureHandler) WithGroup(string) slog.Handler {
	return h
}

func findLog(logs []logEntry, msg string) (logEntry, bool) {
	for _, l := range logs {
		if l.msg == msg {
			return l, true
		}
	}
	return logEntry{}, false
}

func seedUsers(t *testing.T, db *testutil.MemoryDynamoDB, table string, users ...testutil.User) {
	t.Helper()
	values := make([]any, 0, len(users))
	for _, u := range users {
		values = append(values, u)
	}
	require.NoError(t, db.Seed(table, testutil.MarshalItems(t, values...)...))
}

func usersRequest(overwrite bool) Request {
	return Request{
		SourceStage:      "dev",
		TargetStage:      "prod",
		OverwriteAllData: overwrite,
		StageToken:       DefaultStageToken,
		Tables:           []string{"Users-${stage}"},
	}
}

func newUsersDB() *testutil.MemoryDynamoDB {
	db := testutil.NewMemoryDynamoDB()
	db.CreateTable("Users-dev", "id", "")
	db.CreateTable("Users-prod", "id", "")
	return db
}
