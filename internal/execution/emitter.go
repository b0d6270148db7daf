package execution

import (
	"context"
	"fmt"
	"time"

	"statarb/internal/models"
	"statarb/pkg/retry"
	"statarb/pkg/utils"
)

// IntentStore - журнал ордер-намерений
type IntentStore interface {
	Create(intent *models.OrderIntent) error
}

// Broadcaster - рассылка намерений подписчикам реального времени
type Broadcaster interface {
	BroadcastIntent(intent *models.OrderIntent)
}

// Emitter передаёт ордер-намерения внешнему исполнителю:
// фиксирует запись в журнале и рассылает её по websocket.
// Ядро не подтверждает fills, граница ответственности - журнал.
//
// Запись в журнал ретраится (AggressiveConfig): потерянное намерение
// хуже задержанного. Broadcast best-effort, без ретраев.
type Emitter struct {
	store       IntentStore
	broadcaster Broadcaster
	retryCfg    retry.Config
	logger      *utils.Logger
}

// NewEmitter создает эмиттер намерений
func NewEmitter(store IntentStore, broadcaster Broadcaster, logger *utils.Logger) *Emitter {
	cfg := retry.AggressiveConfig()
	cfg.RetryIf = func(err error) bool {
		return retry.RetryIfNotContext(err) && retry.IsRetryable(err)
	}

	return &Emitter{
		store:       store,
		broadcaster: broadcaster,
		retryCfg:    cfg,
		logger:      logger.WithComponent("execution"),
	}
}

// Emit фиксирует намерение и возвращает его с присвоенным ID
func (e *Emitter) Emit(intent models.OrderIntent) (models.OrderIntent, error) {
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Now()
	}

	cfg := e.retryCfg
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		e.logger.Warn("retrying intent write",
			utils.Pair(intent.Pair.String()),
			utils.Int("attempt", attempt),
			utils.Err(err))
	}

	err := retry.Do(context.Background(), func() error {
		return e.store.Create(&intent)
	}, cfg)
	if err != nil {
		return models.OrderIntent{}, fmt.Errorf("emit intent %s %s: %w", intent.Kind, intent.Pair, err)
	}

	e.logger.Info("intent emitted",
		utils.Pair(intent.Pair.String()),
		utils.Signal(string(intent.Kind)),
		utils.HedgeRatio(intent.HedgeRatio),
		utils.Fraction(intent.Fraction),
		utils.Int("intent_id", intent.ID))

	if e.broadcaster != nil {
		e.broadcaster.BroadcastIntent(&intent)
	}

	return intent, nil
}
