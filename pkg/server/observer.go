package server

import "log/slog"

// logObserver logs store mutations at debug level.
type logObserver struct {
	log *slog.Logger
}

func (o *logObserver) OnInsert(typeName, recID string) {
	o.log.Debug("record inserted", "type", typeName, "id", recID)
}

func (o *logObserver) OnUpdate(typeName, recID string) {
	o.log.Debug("record updated", "type", typeName, "id", recID)
}

func (o *logObserver) OnRemove(typeName, recID string) {
	o.log.Debug("record removed", "type", typeName, "id", recID)
}

func (o *logObserver) OnReset(typeNames []string) {
	o.log.Debug("store reset", "types", len(typeNames))
}
