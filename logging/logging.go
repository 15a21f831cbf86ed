package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON production logger writing to stderr. The returned
// level can be changed while the logger is in use.
func New(level string) (*zap.Logger, zap.AtomicLevel, error) {
	atom, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, atom, err
	}
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = atom
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, atom, err
	}
	return logger, atom, nil
}

// SetLevel changes atom to level, leaving it untouched when level is invalid.
func SetLevel(atom zap.AtomicLevel, level string) error {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	atom.SetLevel(l)
	return nil
}
