package mocks

import "github.com/haguru/kakashi/internal/interfaces"

// NopLogger discards everything. Tests use it where a component requires a
// logger but the output is irrelevant.
type NopLogger struct{}

func (NopLogger) Info(msg string, keyvals ...interface{})  {}
func (NopLogger) Warn(msg string, keyvals ...interface{})  {}
func (NopLogger) Error(msg string, keyvals ...interface{}) {}
func (NopLogger) Debug(msg string, keyvals ...interface{}) {}
func (NopLogger) SetLevel(level string)                    {}

func (n NopLogger) WithContext(ctx map[string]interface{}) interfaces.Logger { return n }
