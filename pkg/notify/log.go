package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log records every call; the dev backend when nothing else is configured.
type Log struct{ log *zap.SugaredLogger }

func NewLog(log *zap.SugaredLogger) *Log { return &Log{log: log} }

func (l *Log) SendEvent(_ context.Context, identity, name string, data map[string]any) error {
	l.log.Infow("notify event", "to", identity, "event", name, "data", data)
	return nil
}

func (l *Log) SendTransactional(_ context.Context, identity, templateID string, data map[string]any) error {
	l.log.Infow("notify transactional", "to", identity, "template", templateID, "data", data)
	return nil
}

func (l *Log) Identify(_ context.Context, identity string, attrs map[string]any) error {
	l.log.Infow("notify identify", "to", identity, "attrs", attrs)
	return nil
}
