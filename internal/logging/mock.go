package logging

// Entry is one log call captured by MockLogger.
type Entry struct {
	Level   string
	Message string
	Fields  []Field
	Err     error
}

// MockLogger records log calls for assertions in tests.
type MockLogger struct {
	Entries []Entry

	pendingErr    error
	pendingFields []Field
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	m.Entries = append(m.Entries, Entry{
		Level:   level,
		Message: msg,
		Fields:  append(append([]Field(nil), m.pendingFields...), fields...),
		Err:     m.pendingErr,
	})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("error", msg, fields) }

func (m *MockLogger) WithError(err error) Logger {
	return &MockLogger{Entries: m.Entries, pendingErr: err, pendingFields: m.pendingFields}
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return &MockLogger{
		Entries:       m.Entries,
		pendingErr:    m.pendingErr,
		pendingFields: append(append([]Field(nil), m.pendingFields...), Field{Key: key, Value: value}),
	}
}

// Discard is a Logger that keeps nothing; handy as a default in tests.
var Discard Logger = &MockLogger{}
