package repository

import (
	"database/sql"
	"errors"
	"time"

	"statarb/internal/models"
)

// Ошибки репозитория тикеров
var (
	ErrTickerNotFound = errors.New("ticker not found")
	ErrTickerExists   = errors.New("ticker already exists")
)

// TickerRepository - работа с каталогом тикеров (таблица tickers).
// Вселенная обновляется не чаще раза за прогон; деактивация убирает
// тикер из следующего снимка, не трогая историю цен.
type TickerRepository struct {
	db *sql.DB
}

// NewTickerRepository создает новый экземпляр репозитория
func NewTickerRepository(db *sql.DB) *TickerRepository {
	return &TickerRepository{db: db}
}

// List возвращает тикеры каталога; onlyActive ограничивает вселенной
func (r *TickerRepository) List(onlyActive bool) ([]models.Ticker, error) {
	query := `SELECT ticker FROM tickers ORDER BY ticker`
	if onlyActive {
		query = `SELECT ticker FROM tickers WHERE is_active = TRUE ORDER BY ticker`
	}

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []models.Ticker
	for rows.Next() {
		var t models.Ticker
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tickers, nil
}

// Add регистрирует тикер в каталоге активным
func (r *TickerRepository) Add(t models.Ticker) error {
	query := `
		INSERT INTO tickers (ticker, is_active, added_at)
		VALUES ($1, TRUE, $2)`

	_, err := r.db.Exec(query, t, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTickerExists
		}
		return err
	}
	return nil
}

// SetActive переключает участие тикера во вселенной
func (r *TickerRepository) SetActive(t models.Ticker, active bool) error {
	result, err := r.db.Exec(`UPDATE tickers SET is_active = $1 WHERE ticker = $2`, active, t)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTickerNotFound
	}

	return nil
}

// Exists проверяет наличие тикера в каталоге
func (r *TickerRepository) Exists(t models.Ticker) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tickers WHERE ticker = $1)`, t).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Count возвращает количество активных тикеров
func (r *TickerRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM tickers WHERE is_active = TRUE`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ErrNoCoverage - у тикера нет ни одного наблюдения цены
var ErrNoCoverage = errors.New("no price coverage for ticker")

// PriceCoverage - охват истории цен одного тикера
type PriceCoverage struct {
	Ticker models.Ticker `json:"ticker"`
	First  time.Time     `json:"first"`
	Last   time.Time     `json:"last"`
	Points int           `json:"points"`
}

// PriceRepository - чтение истории цен (таблица prices) для API.
// Загрузка истории внутрь прогона идёт через marketdata, здесь только
// справочные выборки: охват и последняя цена.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository создает новый экземпляр репозитория
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// Coverage возвращает границы и размер истории тикера
func (r *PriceRepository) Coverage(t models.Ticker) (*PriceCoverage, error) {
	query := `
		SELECT MIN(ts), MAX(ts), COUNT(*)
		FROM prices
		WHERE ticker = $1`

	cov := &PriceCoverage{Ticker: t}
	var first, last sql.NullTime
	err := r.db.QueryRow(query, t).Scan(&first, &last, &cov.Points)
	if err != nil {
		return nil, err
	}
	if cov.Points == 0 {
		return nil, ErrNoCoverage
	}
	cov.First = first.Time
	cov.Last = last.Time

	return cov, nil
}

// LatestPrice возвращает последнее наблюдение цены тикера
func (r *PriceRepository) LatestPrice(t models.Ticker) (*models.PricePoint, error) {
	query := `
		SELECT ts, price
		FROM prices
		WHERE ticker = $1
		ORDER BY ts DESC
		LIMIT 1`

	var p models.PricePoint
	err := r.db.QueryRow(query, t).Scan(&p.Timestamp, &p.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoCoverage
		}
		return nil, err
	}

	return &p, nil
}
