package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type loggerKeyType string

const correlationIDKey loggerKeyType = "loggerWithCorrelation"

const (
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

// Field describes one HTTP exchange for Request and ResponseWithLevel.
type Field struct {
	URL            string
	HostName       string
	HTTPStatusCode int
	Duration       int64
	RequestBody    string
	ResponseBody   string
	HTTPMethod     string
	Message        string
	Extra          map[string]any
}

type Logger interface {
	Info(ctx context.Context, message string)
	Warn(ctx context.Context, message string)
	Exception(ctx context.Context, message string, error error)
	WithCorrelationID(ctx context.Context, id string) context.Context
	CorrelationID(ctx context.Context) string
	Fatal(ctx context.Context, message string, error error)
	Request(ctx context.Context, withFields *Field)
	ResponseWithLevel(ctx context.Context, withFields *Field, level logrus.Level)
	InfoWithExtra(ctx context.Context, message string, dictionary map[string]any)
	WarnWithExtra(ctx context.Context, message string, dictionary map[string]any)
}

type logger struct {
	base *logrus.Entry
}

// NewLogger writes JSON lines to stdout, tagged with the service name.
func NewLogger(service string, level logrus.Level) Logger {
	l := NewLoggerWithOutput(os.Stdout, level).(*logger)
	l.base = l.base.WithField("Service", service)
	return l
}

// NewLoggerWithOutput builds a Logger writing JSON lines to out.
func NewLoggerWithOutput(out io.Writer, level logrus.Level) Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(new(jsonFormatter))
	log.SetLevel(level)
	return &logger{base: logrus.NewEntry(log)}
}

// ParseLevel maps a LOG_LEVEL value to a logrus level. Empty means info.
func ParseLevel(raw string) (logrus.Level, error) {
	if raw == "" {
		return InfoLevel, nil
	}
	return logrus.ParseLevel(raw)
}

func (l *logger) Info(ctx context.Context, message string) {
	l.entry(ctx).Info(message)
}

func (l *logger) InfoWithExtra(ctx context.Context, message string, dictionary map[string]any) {
	l.entry(ctx).WithFields(logrus.Fields(dictionary)).Info(message)
}

func (l *logger) Warn(ctx context.Context, message string) {
	l.entry(ctx).Warn(message)
}

func (l *logger) WarnWithExtra(ctx context.Context, message string, dictionary map[string]any) {
	l.entry(ctx).WithFields(logrus.Fields(dictionary)).Warn(message)
}

func (l *logger) Exception(ctx context.Context, message string, err error) {
	l.entry(ctx).WithField("Exception", err).Error(message)
}

func (l *logger) Fatal(ctx context.Context, message string, err error) {
	l.Exception(ctx, message, err)
	os.Exit(-1)
}

// Request logs an incoming call before its status is known.
func (l *logger) Request(ctx context.Context, withFields *Field) {
	fields := httpFields(withFields)
	fields["ResponseBody"] = ""
	fields["HttpStatusCode"] = 102
	fields["Duration"] = 0

	l.entry(ctx).WithFields(fields).Info(withFields.Message)
}

func (l *logger) ResponseWithLevel(ctx context.Context, withFields *Field, level logrus.Level) {
	l.entry(ctx).WithFields(httpFields(withFields)).Log(level, withFields.Message)
}

func httpFields(withFields *Field) logrus.Fields {
	fields := logrus.Fields{
		"Url":            withFields.URL,
		"HostName":       withFields.HostName,
		"HttpMethod":     withFields.HTTPMethod,
		"HttpStatusCode": withFields.HTTPStatusCode,
		"Duration":       withFields.Duration,
		"RequestBody":    withFields.RequestBody,
		"ResponseBody":   withFields.ResponseBody,
	}
	for key, value := range withFields.Extra {
		fields[key] = value
	}
	return fields
}

// entry resolves the correlated entry stored in ctx and adds the active
// trace and span ids, if any.
func (l *logger) entry(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return l.base
	}

	e := l.base
	if correlated, ok := ctx.Value(correlationIDKey).(*logrus.Entry); ok {
		e = correlated
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e = e.WithFields(logrus.Fields{
			"TraceId": sc.TraceID().String(),
			"SpanId":  sc.SpanID().String(),
		})
	}
	return e
}

func (l *logger) WithCorrelationID(ctx context.Context, id string) context.Context {
	base := l.base
	if correlated, ok := ctx.Value(correlationIDKey).(*logrus.Entry); ok {
		base = correlated
	}
	return context.WithValue(ctx, correlationIDKey, base.WithField("CorrelationId", id))
}

// CorrelationID returns the id attached by WithCorrelationID, or "".
func (l *logger) CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	correlated, ok := ctx.Value(correlationIDKey).(*logrus.Entry)
	if !ok {
		return ""
	}
	id, _ := correlated.Data["CorrelationId"].(string)
	return id
}

type jsonFormatter struct{}

func (*jsonFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	data := make(logrus.Fields, len(entry.Data)+3)
	for key, value := range entry.Data {
		data[key] = value
	}
	data["Message"] = entry.Message
	data["Level"] = entry.Level.String()
	data["DateTime"] = entry.Time.UTC().Format(time.RFC3339Nano)

	if exception, ok := data["Exception"]; ok {
		data["Exception"] = fmt.Sprint(exception)
	}

	serialized, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fields to JSON, %w", err)
	}
	return append(serialized, '\n'), nil
}
