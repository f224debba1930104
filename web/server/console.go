package server

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// ConsoleMessage is one captured log entry
type ConsoleMessage struct {
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Console keeps the most recent log messages in memory
type Console struct {
	mu       sync.Mutex
	messages []ConsoleMessage
	limit    int
}

// NewConsole creates a console holding at most limit messages
func NewConsole(limit int) *Console {
	if limit < 1 {
		limit = 1
	}
	return &Console{limit: limit}
}

// Messages returns a copy of the buffered messages, oldest first
func (c *Console) Messages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConsoleMessage(nil), c.messages...)
}

func (c *Console) add(msg ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == c.limit {
		copy(c.messages, c.messages[1:])
		c.messages = c.messages[:len(c.messages)-1]
	}
	c.messages = append(c.messages, msg)
}

// Core returns a zap core that records entries at or above level into the
// console. Writes never block on readers.
func (c *Console) Core(level zapcore.LevelEnabler) zapcore.Core {
	return &consoleCore{LevelEnabler: level, console: c}
}

type consoleCore struct {
	zapcore.LevelEnabler
	console *Console
	fields  []zapcore.Field
}

func (cc *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	return &consoleCore{
		LevelEnabler: cc.LevelEnabler,
		console:      cc.console,
		fields:       append(append([]zapcore.Field(nil), cc.fields...), fields...),
	}
}

func (cc *consoleCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if cc.Enabled(ent.Level) {
		return ce.AddCore(ent, cc)
	}
	return ce
}

func (cc *consoleCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range cc.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	msg := ConsoleMessage{
		Message:   ent.Message,
		Timestamp: ent.Time,
		Level:     ent.Level.String(),
		Logger:    ent.LoggerName,
	}
	if len(enc.Fields) > 0 {
		msg.Fields = enc.Fields
	}
	cc.console.add(msg)
	return nil
}

func (cc *consoleCore) Sync() error { return nil }
