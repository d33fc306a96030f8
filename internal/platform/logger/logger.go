package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the zap preset and level. Redaction masks values whose key
// looks like a credential and strips userinfo from connection URIs.
type Config struct {
	Mode   string `yaml:"mode"`
	Level  string `yaml:"level"`
	Redact bool   `yaml:"redact"`
}

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        bool
}

// New builds a zap-backed logger. "prod" and "production" emit JSON, any
// other mode uses the console encoder. An empty level means info.
func New(cfg Config) (*Logger, error) {
	var zc zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "prod", "production":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	z, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return &Logger{SugaredLogger: z.Sugar(), redact: cfg.Redact}, nil
}

func parseLevel(raw string) (zapcore.Level, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return lvl, fmt.Errorf("logger: invalid level %q: %w", raw, err)
	}
	return lvl, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.SugaredLogger.Debugw(msg, l.scrub(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.SugaredLogger.Infow(msg, l.scrub(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.SugaredLogger.Warnw(msg, l.scrub(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.SugaredLogger.Errorw(msg, l.scrub(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.scrub(kv)...), redact: l.redact}
}

// Named tags every entry with the owning component.
func (l *Logger) Named(service string) *Logger {
	return l.With("service", service)
}

func (l *Logger) scrub(kv []any) []any {
	if !l.redact || len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		if sensitiveKey(key) {
			out = append(out, key, "[REDACTED]")
			continue
		}
		out = append(out, key, maskUserinfo(kv[i+1]))
	}
	return out
}

var sensitiveFragments = []string{"password", "secret", "token", "credentials", "dsn"}

func sensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, frag := range sensitiveFragments {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

// maskUserinfo turns bolt://neo4j:pw@host into bolt://***@host.
func maskUserinfo(val any) any {
	s, ok := val.(string)
	if !ok {
		return val
	}
	scheme := strings.Index(s, "://")
	at := strings.LastIndex(s, "@")
	if scheme < 0 || at <= scheme+3 {
		return val
	}
	return s[:scheme+3] + "***" + s[at:]
}
