package repository

import (
	"database/sql"
	"errors"
	"time"

	"statarb/internal/models"
)

// Ошибки репозитория ордер-намерений
var (
	ErrIntentNotFound = errors.New("order intent not found")
)

// IntentRepository - работа с таблицей order_intents.
// Журнал намерений - граница исполнения: записи читает внешний
// коллаборатор, ядро их не подтверждает и не мутирует.
type IntentRepository struct {
	db *sql.DB
}

// NewIntentRepository создает новый экземпляр репозитория
func NewIntentRepository(db *sql.DB) *IntentRepository {
	return &IntentRepository{db: db}
}

// Create фиксирует намерение и присваивает ID
func (r *IntentRepository) Create(intent *models.OrderIntent) error {
	query := `
		INSERT INTO order_intents (leg_a, leg_b, direction, hedge_ratio, kind, fraction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Now()
	}

	return r.db.QueryRow(
		query,
		intent.Pair.LegA,
		intent.Pair.LegB,
		intent.Direction,
		intent.HedgeRatio,
		intent.Kind,
		intent.Fraction,
		intent.CreatedAt,
	).Scan(&intent.ID)
}

// Recent возвращает последние намерения
func (r *IntentRepository) Recent(limit int) ([]models.OrderIntent, error) {
	query := `
		SELECT id, leg_a, leg_b, direction, hedge_ratio, kind, fraction, created_at
		FROM order_intents
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	return r.queryIntents(query, limit)
}

// GetByPair возвращает намерения по паре
func (r *IntentRepository) GetByPair(key models.PairKey, limit int) ([]models.OrderIntent, error) {
	query := `
		SELECT id, leg_a, leg_b, direction, hedge_ratio, kind, fraction, created_at
		FROM order_intents
		WHERE leg_a = $1 AND leg_b = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	return r.queryIntents(query, key.LegA, key.LegB, limit)
}

// GetByID возвращает намерение по ID
func (r *IntentRepository) GetByID(id int) (*models.OrderIntent, error) {
	query := `
		SELECT id, leg_a, leg_b, direction, hedge_ratio, kind, fraction, created_at
		FROM order_intents
		WHERE id = $1`

	intent := &models.OrderIntent{}
	err := r.db.QueryRow(query, id).Scan(
		&intent.ID,
		&intent.Pair.LegA,
		&intent.Pair.LegB,
		&intent.Direction,
		&intent.HedgeRatio,
		&intent.Kind,
		&intent.Fraction,
		&intent.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIntentNotFound
		}
		return nil, err
	}

	return intent, nil
}

func (r *IntentRepository) queryIntents(query string, args ...interface{}) ([]models.OrderIntent, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []models.OrderIntent
	for rows.Next() {
		var intent models.OrderIntent
		err := rows.Scan(
			&intent.ID,
			&intent.Pair.LegA,
			&intent.Pair.LegB,
			&intent.Direction,
			&intent.HedgeRatio,
			&intent.Kind,
			&intent.Fraction,
			&intent.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return intents, nil
}
