package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured JSON logging with domain-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new enhanced logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, userAgent string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// ComputeLogger logs one analytics compute cycle
func (l *Logger) ComputeLogger(role string, projects, developers, insights int, duration time.Duration, cacheHit bool) {
	l.Info("Compute Completed",
		"role", role,
		"projects", projects,
		"developers", developers,
		"insights", insights,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	)
}

// SyncLogger logs external signal synchronization runs
func (l *Logger) SyncLogger(source string, records int, duration time.Duration, err error) {
	if err != nil {
		l.Warn("Sync Failed",
			"source", source,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	l.Info("Sync Completed",
		"source", source,
		"records", records,
		"duration_ms", duration.Milliseconds(),
	)
}

// EscalationLogger logs risk escalation events
func (l *Logger) EscalationLogger(sourceID, sourceRole string, riskScore int, notified int) {
	l.Info("Risk Escalation",
		"source_id", sourceID,
		"source_role", sourceRole,
		"risk_score", riskScore,
		"notified", notified,
	)
}

// CacheLogger logs cache operations
func (l *Logger) CacheLogger(operation, key string, hit bool, itemCount int) {
	l.Debug("Cache Operation",
		"operation", operation,
		"key", key,
		"hit", hit,
		"cache_size", itemCount,
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	l.Logger = slog.New(handler)
}

var startTime = time.Now()
