package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette is one console color scheme.
type palette struct {
	fg        string
	time      string
	component []string
	id        string
	number    string
	key       string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

// Gruvbox Dark (warm, muted)
var gruvbox = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;108m",
	component: []string{"\x1b[38;5;208m", "\x1b[38;5;214m"},
	id:        "\x1b[38;5;109m",
	number:    "\x1b[38;5;175m",
	key:       "\x1b[38;5;245m",
	warn:      "\x1b[38;5;214m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;88m",
}

// Everforest Dark (forest greens)
var everforest = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;107m",
	component: []string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
	id:        "\x1b[38;5;109m",
	number:    "\x1b[38;5;108m",
	key:       "\x1b[38;5;245m",
	warn:      "\x1b[38;5;179m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;52m",
}

// plain disables colors (NO_COLOR, CRDB_LOG_THEME=none)
var plain = palette{component: []string{""}}

var currentTheme = "everforest"

// SetTheme configures the color scheme for console log output. Unknown
// names are ignored.
func SetTheme(theme string) {
	switch theme {
	case "everforest", "gruvbox", "none":
		currentTheme = theme
	}
}

func colors() palette {
	switch currentTheme {
	case "gruvbox":
		return gruvbox
	case "none":
		return plain
	default:
		return everforest
	}
}

// paint wraps s in color, leaving it bare when the theme has no colors.
func paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + colorReset
}

// colorComponent hashes name so a component keeps its color across lines.
func colorComponent(p palette, name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	return p.component[hash%len(p.component)]
}

// minimalEncoder implements a calm, compact console encoder with theme support
// Format: "13:04:35  c.cache  hit  key=fetch:http://...  duration_ms=3ms"
type minimalEncoder struct {
	zapcore.Encoder
	context []zapcore.Field
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		context: append([]zapcore.Field(nil), enc.context...),
	}
}

// AddString and friends are how zap hands With() fields to the encoder;
// they are collected and rendered after the per-entry fields.
func (enc *minimalEncoder) AddString(key, value string) {
	enc.context = append(enc.context, zap.String(key, value))
}

func (enc *minimalEncoder) AddInt64(key string, value int64) {
	enc.context = append(enc.context, zap.Int64(key, value))
}

func (enc *minimalEncoder) AddBool(key string, value bool) {
	enc.context = append(enc.context, zap.Bool(key, value))
}

func (enc *minimalEncoder) AddFloat64(key string, value float64) {
	enc.context = append(enc.context, zap.Float64(key, value))
}

func (enc *minimalEncoder) AddUint64(key string, value uint64) {
	enc.context = append(enc.context, zap.Uint64(key, value))
}

func (enc *minimalEncoder) AddDuration(key string, value time.Duration) {
	enc.context = append(enc.context, zap.Duration(key, value))
}

func (enc *minimalEncoder) AddTime(key string, value time.Time) {
	enc.context = append(enc.context, zap.Time(key, value))
}

func (enc *minimalEncoder) AddArray(key string, value zapcore.ArrayMarshaler) error {
	enc.context = append(enc.context, zap.Array(key, value))
	return nil
}

func (enc *minimalEncoder) AddObject(key string, value zapcore.ObjectMarshaler) error {
	enc.context = append(enc.context, zap.Object(key, value))
	return nil
}

func (enc *minimalEncoder) AddReflected(key string, value interface{}) error {
	enc.context = append(enc.context, zap.Any(key, value))
	return nil
}

var pool = buffer.NewPool()

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	p := colors()
	final := pool.Get()

	final.AppendString(paint(p.time, ent.Time.Format("15:04:05")))

	// Level: only shown when not INFO
	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelString(p, ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(paint(colorComponent(p, ent.LoggerName), abbreviateName(ent.LoggerName)))
	}

	final.AppendString("  ")
	final.AppendString(paint(p.fg, ent.Message))

	all := fields
	if len(enc.context) > 0 {
		all = append(append([]zapcore.Field(nil), fields...), enc.context...)
	}
	if rendered := renderFields(p, all); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

func levelString(p palette, level zapcore.Level) string {
	name := level.CapitalString()
	switch level {
	case zapcore.DebugLevel:
		return paint(p.key, name)
	case zapcore.WarnLevel:
		if p.warn == "" {
			return name
		}
		return colorBold + p.warnBg + p.warn + name + colorReset
	default:
		if p.err == "" {
			return name
		}
		return colorBold + p.errBg + p.err + name + colorReset
	}
}

// abbreviateName shortens component names: crdb.cache -> c.cache
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// renderFields renders every field as key=value in the order given. No
// field is ever dropped; only the value styling depends on the key.
func renderFields(p palette, fields []zapcore.Field) string {
	var out []string
	for _, f := range fields {
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		v, ok := enc.Fields[f.Key]
		if !ok {
			// zap.Skip and nil errors
			continue
		}
		out = append(out, paint(p.key, f.Key+"=")+styleValue(p, f.Key, v))
	}
	return strings.Join(out, " ")
}

func styleValue(p palette, key string, v interface{}) string {
	s := fmt.Sprintf("%v", v)
	switch key {
	case FieldURL, FieldRequestID, FieldKey, FieldPath:
		return paint(p.id, s)
	case FieldDurationMS:
		return paint(p.number, s) + "ms"
	}
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return paint(p.number, s)
	}
	return s
}
