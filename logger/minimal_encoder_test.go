package logger

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stripANSI removes ANSI color codes from a string for testing
func stripANSI(str string) string {
	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(str, "")
}

func encode(t *testing.T, enc zapcore.Encoder, ent zapcore.Entry, fields ...zapcore.Field) string {
	t.Helper()
	buf, err := enc.EncodeEntry(ent, fields)
	require.NoError(t, err)
	return stripANSI(buf.String())
}

func entry(level zapcore.Level, name, msg string) zapcore.Entry {
	return zapcore.Entry{
		Level:      level,
		Time:       time.Date(2024, 1, 2, 13, 4, 35, 0, time.UTC),
		LoggerName: name,
		Message:    msg,
	}
}

// The minimal encoder must never silently discard a field.
func TestMinimalEncoderNeverDiscardsFields(t *testing.T) {
	testFields := []struct {
		field    zapcore.Field
		mustFind string
	}{
		{zap.String(FieldURL, "http://lpsc.in2p3.fr/crdb/rest.php?num=H"), "url=http://lpsc.in2p3.fr/crdb/rest.php?num=H"},
		{zap.String(FieldQuantity, "B/C"), "quantity=B/C"},
		{zap.Int(FieldRows, 999), "rows=999"},
		{zap.Int64(FieldBytes, 9999999), "bytes=9999999"},
		{zap.Int64(FieldDurationMS, 12), "duration_ms=12ms"},
		{zap.Bool(FieldCacheHit, true), "cache=true"},
		{zap.Float64("flux_rescaling", 0.8), "flux_rescaling=0.8"},
		{zap.Float32("float32_field", 3.14), "float32_field=3.14"},
		{zap.Strings("quantities", []string{"H", "He"}), "quantities=[H He]"},
		{zap.String("field.with.dots", "x"), "field.with.dots=x"},
		{zap.Error(nil), ""},
		{zap.String(FieldError, "something went wrong"), "error=something went wrong"},
		{zap.Duration("timeout", 5*time.Second), "timeout=5s"},
		{zap.Uint8("uint8", 200), "uint8=200"},
		{zap.ByteString("body", []byte("hello world")), "body=hello world"},
		{zap.Complex128("complex", complex(1.0, 2.0)), "complex="},
	}

	var all []zapcore.Field
	for _, tf := range testFields {
		all = append(all, tf.field)
	}
	out := encode(t, newMinimalEncoder(), entry(zapcore.InfoLevel, "crdb.client", "fetched"), all...)

	for _, tf := range testFields {
		if tf.mustFind != "" {
			assert.Contains(t, out, tf.mustFind)
		}
	}
}

func TestMinimalEncoderLayout(t *testing.T) {
	out := encode(t, newMinimalEncoder(), entry(zapcore.InfoLevel, "crdb.cache", "hit"), zap.String(FieldKey, "k"))
	assert.Equal(t, "13:04:35  c.cache  hit  key=k\n", out)

	out = encode(t, newMinimalEncoder(), entry(zapcore.WarnLevel, "", "slow server"))
	assert.Equal(t, "13:04:35  WARN  slow server\n", out)

	out = encode(t, newMinimalEncoder(), entry(zapcore.ErrorLevel, "cli", "failed"))
	assert.Equal(t, "13:04:35  ERROR  cli  failed\n", out)
}

func TestMinimalEncoderFieldOrder(t *testing.T) {
	out := encode(t, newMinimalEncoder(), entry(zapcore.InfoLevel, "", "m"),
		zap.String("b", "1"), zap.String("a", "2"), zap.String("c", "3"))
	assert.True(t, strings.HasSuffix(out, "b=1 a=2 c=3\n"), out)
}

func TestMinimalEncoderWithFields(t *testing.T) {
	enc := newMinimalEncoder()
	zap.String(FieldRequestID, "req-1").AddTo(enc)
	zap.Int(FieldCount, 3).AddTo(enc)
	zap.Duration("age", time.Hour).AddTo(enc)

	clone := enc.Clone()
	out := encode(t, clone, entry(zapcore.InfoLevel, "", "query"), zap.String(FieldQuantity, "H"))
	assert.Contains(t, out, "quantity=H request_id=req-1 count=3 age=1h0m0s")

	// Fields added to the clone do not leak back.
	zap.String("extra", "x").AddTo(clone)
	assert.NotContains(t, encode(t, enc, entry(zapcore.InfoLevel, "", "m")), "extra")
}

func TestThemes(t *testing.T) {
	defer SetTheme(currentTheme)

	for _, theme := range []string{"everforest", "gruvbox"} {
		SetTheme(theme)
		buf, err := newMinimalEncoder().EncodeEntry(entry(zapcore.WarnLevel, "crdb", "m"), nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "\x1b[", theme)
	}

	SetTheme("none")
	buf, err := newMinimalEncoder().EncodeEntry(entry(zapcore.WarnLevel, "crdb", "m"), []zapcore.Field{zap.Int(FieldRows, 1)})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "\x1b[")

	SetTheme("solarized")
	assert.Equal(t, "none", currentTheme)
}

func TestAbbreviateName(t *testing.T) {
	assert.Equal(t, "c.cache", abbreviateName("crdb.cache"))
	assert.Equal(t, "c.client.fetch", abbreviateName("crdb.client.fetch"))
	assert.Equal(t, "cli", abbreviateName("cli"))
}
