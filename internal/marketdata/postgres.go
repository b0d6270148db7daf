package marketdata

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"statarb/internal/models"
	"statarb/pkg/retry"
	"statarb/pkg/utils"
)

// PostgresAccessor читает вселенную и историю цен из postgres.
// Схема:
//
//	tickers(ticker TEXT PRIMARY KEY, is_active BOOL)
//	prices(ticker TEXT, ts TIMESTAMPTZ, price DOUBLE PRECISION, PRIMARY KEY(ticker, ts))
type PostgresAccessor struct {
	db       *sql.DB
	logger   *zap.Logger
	retryCfg retry.Config
}

// NewPostgresAccessor создаёт accessor поверх открытого соединения
func NewPostgresAccessor(db *sql.DB, logger *zap.Logger) *PostgresAccessor {
	return &PostgresAccessor{
		db:       db,
		logger:   logger,
		retryCfg: retry.ConservativeConfig(),
	}
}

// Universe возвращает активные тикеры каталога
func (a *PostgresAccessor) Universe(ctx context.Context) ([]models.Ticker, error) {
	query := `
		SELECT ticker
		FROM tickers
		WHERE is_active = TRUE
		ORDER BY ticker`

	tickers, err := retry.DoWithResult(ctx, func() ([]models.Ticker, error) {
		rows, err := a.db.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []models.Ticker
		for rows.Next() {
			var t models.Ticker
			if err := rows.Scan(&t); err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return out, rows.Err()
	}, a.retryCfg)

	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}

	a.logger.Debug("вселенная загружена", zap.Int("tickers", len(tickers)))
	return tickers, nil
}

// History возвращает историю цен тикера за диапазон.
// Пустой результат трактуется как ErrDataUnavailable,
// недобор наблюдений - как ErrPartialData.
func (a *PostgresAccessor) History(ctx context.Context, ticker models.Ticker, window utils.TimeRange, minPoints int) (*models.PriceSeries, error) {
	query := `
		SELECT ts, price
		FROM prices
		WHERE ticker = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC`

	points, err := retry.DoWithResult(ctx, func() ([]models.PricePoint, error) {
		rows, err := a.db.QueryContext(ctx, query, string(ticker), window.Start, window.End)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out []models.PricePoint
		for rows.Next() {
			var p models.PricePoint
			if err := rows.Scan(&p.Timestamp, &p.Price); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, rows.Err()
	}, a.retryCfg)

	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", ticker, err)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrDataUnavailable)
	}
	if len(points) < minPoints {
		return nil, fmt.Errorf("%s: %d of %d points: %w", ticker, len(points), minPoints, ErrPartialData)
	}

	return &models.PriceSeries{Ticker: ticker, Points: points}, nil
}
