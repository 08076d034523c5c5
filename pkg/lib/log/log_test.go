package log

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func TestLazyLogger_UsesCurrentDefault(t *testing.T) {
	l := Logger("securestore")
	buf := captureDefault(t)

	l.Info("stored", "n", 1)
	out := buf.String()
	assert.Contains(t, out, "component=securestore")
	assert.Contains(t, out, "msg=stored")
	assert.Equal(t, "securestore", l.Component())
}

func TestSecret_Redacted(t *testing.T) {
	buf := captureDefault(t)
	secret := Secret("s3cr3t")

	Logger("test").Debug("value", "secret", secret)
	out := buf.String()
	assert.NotContains(t, out, "s3cr3t")
	assert.Contains(t, out, "REDACTED 6 bytes")
	assert.NotContains(t, fmt.Sprintf("%v %s", secret, secret), "s3cr3t")
}

func TestKeyID_Truncated(t *testing.T) {
	long := strings.Repeat("a", 100)
	attr := KeyID(long)
	assert.Equal(t, "key_id", attr.Key)
	assert.Equal(t, strings.Repeat("a", KeyIDLen)+"…", attr.Value.String())

	assert.Equal(t, "svc/db", KeyID("svc/db").Value.String())
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", TruncateID("abc", 8))
	assert.Equal(t, "ab…", TruncateID("abc", 2))
	assert.Equal(t, "", TruncateID("abc", 0))
}
