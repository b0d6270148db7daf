package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"statarb/internal/models"
)

// Ошибки репозитория выбранных пар
var (
	ErrSelectedPairNotFound = errors.New("selected pair not found")
)

// SelectedPairRepository - работа с таблицей selected_pairs.
// Таблица хранит активный набор пар между прогонами; ключ - каноническая
// пара (leg_a < leg_b). Загрузка при старте обязана воспроизводить
// набор в точности: те же хеджи, ведущие ноги, ранги и метки времени.
type SelectedPairRepository struct {
	db *sql.DB
}

// NewSelectedPairRepository создает новый экземпляр репозитория
func NewSelectedPairRepository(db *sql.DB) *SelectedPairRepository {
	return &SelectedPairRepository{db: db}
}

// Active возвращает весь активный набор в порядке ключей пар
func (r *SelectedPairRepository) Active() ([]models.SelectedPair, error) {
	query := `
		SELECT leg_a, leg_b, hedge_ratio, intercept, leading_leg, score, selected_at, updated_at
		FROM selected_pairs
		ORDER BY leg_a, leg_b`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []models.SelectedPair
	for rows.Next() {
		var sp models.SelectedPair
		err := rows.Scan(
			&sp.Pair.LegA,
			&sp.Pair.LegB,
			&sp.HedgeRatio,
			&sp.Intercept,
			&sp.LeadingLeg,
			&sp.Score,
			&sp.SelectedAt,
			&sp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, sp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return pairs, nil
}

// Replace атомарно замещает активный набор результатом селектора.
// Пишет только оркестратор, строго один писатель на процесс.
func (r *SelectedPairRepository) Replace(pairs []models.SelectedPair) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM selected_pairs`); err != nil {
		return fmt.Errorf("clear selected pairs: %w", err)
	}

	query := `
		INSERT INTO selected_pairs (leg_a, leg_b, hedge_ratio, intercept, leading_leg, score, selected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, sp := range pairs {
		if _, err := tx.Exec(
			query,
			sp.Pair.LegA,
			sp.Pair.LegB,
			sp.HedgeRatio,
			sp.Intercept,
			sp.LeadingLeg,
			sp.Score,
			sp.SelectedAt,
			sp.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert selected pair %s: %w", sp.Pair, err)
		}
	}

	return tx.Commit()
}

// Upsert обновляет одну пару по каноническому ключу
func (r *SelectedPairRepository) Upsert(sp *models.SelectedPair) error {
	query := `
		INSERT INTO selected_pairs (leg_a, leg_b, hedge_ratio, intercept, leading_leg, score, selected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (leg_a, leg_b) DO UPDATE
		SET hedge_ratio = EXCLUDED.hedge_ratio,
		    intercept = EXCLUDED.intercept,
		    leading_leg = EXCLUDED.leading_leg,
		    score = EXCLUDED.score,
		    updated_at = EXCLUDED.updated_at`

	if sp.UpdatedAt.IsZero() {
		sp.UpdatedAt = time.Now()
	}

	_, err := r.db.Exec(
		query,
		sp.Pair.LegA,
		sp.Pair.LegB,
		sp.HedgeRatio,
		sp.Intercept,
		sp.LeadingLeg,
		sp.Score,
		sp.SelectedAt,
		sp.UpdatedAt,
	)
	return err
}

// GetByKey возвращает пару по каноническому ключу
func (r *SelectedPairRepository) GetByKey(key models.PairKey) (*models.SelectedPair, error) {
	query := `
		SELECT leg_a, leg_b, hedge_ratio, intercept, leading_leg, score, selected_at, updated_at
		FROM selected_pairs
		WHERE leg_a = $1 AND leg_b = $2`

	sp := &models.SelectedPair{}
	err := r.db.QueryRow(query, key.LegA, key.LegB).Scan(
		&sp.Pair.LegA,
		&sp.Pair.LegB,
		&sp.HedgeRatio,
		&sp.Intercept,
		&sp.LeadingLeg,
		&sp.Score,
		&sp.SelectedAt,
		&sp.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSelectedPairNotFound
		}
		return nil, err
	}

	return sp, nil
}

// Count возвращает размер активного набора
func (r *SelectedPairRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM selected_pairs`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
