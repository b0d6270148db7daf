package marketdata

import (
	"context"
	"errors"

	"statarb/internal/models"
	"statarb/pkg/utils"
)

// Ошибки доступа к рыночным данным
var (
	// ErrDataUnavailable - история тикера отсутствует целиком
	ErrDataUnavailable = errors.New("price history unavailable")

	// ErrPartialData - истории недостаточно для статистики
	// (меньше минимума наблюдений)
	ErrPartialData = errors.New("price history incomplete")
)

// Accessor - источник ценовых серий для конвейера.
// Конвейер получает read-only снимок данных на время прогона:
// серии не мутируются после выдачи.
type Accessor interface {
	// Universe возвращает активные тикеры каталога
	Universe(ctx context.Context) ([]models.Ticker, error)

	// History возвращает историю цен тикера в диапазоне.
	// ErrDataUnavailable если истории нет совсем,
	// ErrPartialData если наблюдений меньше minPoints.
	History(ctx context.Context, ticker models.Ticker, window utils.TimeRange, minPoints int) (*models.PriceSeries, error)
}

// Snapshot - выровненные по прогону серии всей вселенной.
// Ключ - тикер; серии уже прошли гигиену вселенной.
type Snapshot map[models.Ticker]*models.PriceSeries

// LoadSnapshot загружает истории всех тикеров вселенной.
// Тикеры с недоступными или неполными данными пропускаются
// (per-pair fault isolation начинается уже на уровне входных данных);
// имена пропущенных возвращаются для журнала прогона.
func LoadSnapshot(ctx context.Context, acc Accessor, window utils.TimeRange, minPoints int) (Snapshot, []models.Ticker, error) {
	universe, err := acc.Universe(ctx)
	if err != nil {
		return nil, nil, err
	}

	snap := make(Snapshot, len(universe))
	var skipped []models.Ticker

	for _, ticker := range universe {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		series, err := acc.History(ctx, ticker, window, minPoints)
		if err != nil {
			if errors.Is(err, ErrDataUnavailable) || errors.Is(err, ErrPartialData) {
				skipped = append(skipped, ticker)
				continue
			}
			return nil, nil, err
		}
		snap[ticker] = series
	}

	return snap, skipped, nil
}
