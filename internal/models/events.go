package models

// Типы событий сессии (уходят в websocket как есть)
const (
	EventExchangeAppended   = "exchange_appended"
	EventSelectionChanged   = "selection_changed"
	EventExchangesCleared   = "exchanges_cleared"
	EventViewToggled        = "view_toggled"
	EventEnvironmentChanged = "environment_changed"
)

// SessionTopic is the broker topic that carries Event values.
const SessionTopic = "session"

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
