package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"devconnect/config"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newCapturingQueryLogger(debug bool) (*queryLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return newGormSlogLogger(base, cfg).(*queryLogger), &buf
}

func insertStatement() (string, int64) {
	return `INSERT INTO "identities" ("password_hash") VALUES ('$2a$12$secrethash')`, 1
}

func TestQueryLogger_OmitsSQLOutsideDebug(t *testing.T) {
	l, buf := newCapturingQueryLogger(false)

	l.Trace(context.Background(), time.Now(), insertStatement, assert.AnError)

	assert.Contains(t, buf.String(), "query failed")
	assert.NotContains(t, buf.String(), "secrethash")
}

func TestQueryLogger_DebugIncludesSQL(t *testing.T) {
	l, buf := newCapturingQueryLogger(true)

	l.Trace(context.Background(), time.Now(), insertStatement, nil)

	assert.Contains(t, buf.String(), "identities")
}

func TestQueryLogger_Classify(t *testing.T) {
	l, _ := newCapturingQueryLogger(false)

	tests := []struct {
		name      string
		err       error
		elapsed   time.Duration
		wantLevel slog.Level
		wantLog   bool
	}{
		{"fast success is quiet", nil, time.Millisecond, slog.LevelDebug, false},
		{"slow query warns", nil, time.Second, slog.LevelWarn, true},
		{"not found is quiet", gorm.ErrRecordNotFound, time.Millisecond, slog.LevelDebug, false},
		{"duplicate email is quiet", gorm.ErrDuplicatedKey, time.Millisecond, slog.LevelDebug, false},
		{"other errors are logged", assert.AnError, time.Millisecond, slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, _, ok := l.classify(tt.err, tt.elapsed)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantLog, ok)
		})
	}
}
