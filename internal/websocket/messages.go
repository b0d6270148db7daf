package websocket

import (
	"time"

	"statarb/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeRunUpdate - смена состояния прогона либо его итог.
	// Отправляется при каждом переходе FSM и по завершении прогона.
	MessageTypeRunUpdate MessageType = "runUpdate"

	// MessageTypeSignal - актуальный сигнал по паре (ENTER/EXIT)
	MessageTypeSignal MessageType = "signal"

	// MessageTypeIntent - ордер-намерение передано исполнителю
	MessageTypeIntent MessageType = "intent"

	// MessageTypeNotification - событие журнала наблюдаемости
	// (DATA_FAULT, NUMERIC, REJECTED, RETIRED, RUN_FAILED и т.д.)
	MessageTypeNotification MessageType = "notification"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// RunUpdateMessage - сообщение о состоянии прогона конвейера
type RunUpdateMessage struct {
	BaseMessage
	Data *models.RunSummary `json:"data"`
}

// SignalMessage - сообщение о сигнале по паре
type SignalMessage struct {
	BaseMessage
	Pair string         `json:"pair"`
	Data *models.Signal `json:"data"`
}

// IntentMessage - сообщение об ордер-намерении
type IntentMessage struct {
	BaseMessage
	Pair string              `json:"pair"`
	Data *models.OrderIntent `json:"data"`
}

// NotificationMessage - сообщение о событии журнала
type NotificationMessage struct {
	BaseMessage
	Data *models.Notification `json:"data"`
}

// NewRunUpdateMessage создает сообщение о прогоне
func NewRunUpdateMessage(summary *models.RunSummary) *RunUpdateMessage {
	return &RunUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeRunUpdate,
			Timestamp: time.Now(),
		},
		Data: summary,
	}
}

// NewSignalMessage создает сообщение о сигнале
func NewSignalMessage(sig *models.Signal) *SignalMessage {
	return &SignalMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeSignal,
			Timestamp: time.Now(),
		},
		Pair: sig.Pair.String(),
		Data: sig,
	}
}

// NewIntentMessage создает сообщение об ордер-намерении
func NewIntentMessage(intent *models.OrderIntent) *IntentMessage {
	return &IntentMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeIntent,
			Timestamp: time.Now(),
		},
		Pair: intent.Pair.String(),
		Data: intent,
	}
}

// NewNotificationMessage создает сообщение уведомления
func NewNotificationMessage(n *models.Notification) *NotificationMessage {
	return &NotificationMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeNotification,
			Timestamp: time.Now(),
		},
		Data: n,
	}
}
