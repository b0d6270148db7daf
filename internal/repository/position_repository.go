package repository

import (
	"database/sql"
	"errors"
	"time"

	"statarb/internal/models"
)

// Ошибки репозитория позиций
var (
	ErrPositionNotFound = errors.New("position not found")
	ErrPositionOpen     = errors.New("pair already has an open position")
)

// PositionRepository - работа с таблицей positions.
// Инвариант "не более одной открытой позиции на пару" обеспечивается
// частичным уникальным индексом по (leg_a, leg_b) WHERE status = 'open'.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository создает новый экземпляр репозитория
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Open фиксирует открытие позиции и присваивает ID
func (r *PositionRepository) Open(pos models.Position) (models.Position, error) {
	query := `
		INSERT INTO positions (leg_a, leg_b, direction, entry_z, fraction, status, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	if pos.Status == "" {
		pos.Status = models.PositionOpen
	}
	if pos.OpenedAt.IsZero() {
		pos.OpenedAt = time.Now()
	}

	err := r.db.QueryRow(
		query,
		pos.Pair.LegA,
		pos.Pair.LegB,
		pos.Direction,
		pos.EntryZ,
		pos.Fraction,
		pos.Status,
		pos.OpenedAt,
	).Scan(&pos.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return models.Position{}, ErrPositionOpen
		}
		return models.Position{}, err
	}

	return pos, nil
}

// Close закрывает открытую позицию пары с указанием причины.
// Возвращает ErrPositionNotFound, если открытой позиции нет.
func (r *PositionRepository) Close(pair models.PairKey, closedAt time.Time, cause string) (models.Position, error) {
	query := `
		UPDATE positions
		SET status = $1, closed_at = $2, close_cause = $3
		WHERE leg_a = $4 AND leg_b = $5 AND status = $6
		RETURNING id, leg_a, leg_b, direction, entry_z, fraction, status, opened_at, closed_at, close_cause`

	var pos models.Position
	err := r.db.QueryRow(
		query,
		models.PositionClosed,
		closedAt,
		cause,
		pair.LegA,
		pair.LegB,
		models.PositionOpen,
	).Scan(
		&pos.ID,
		&pos.Pair.LegA,
		&pos.Pair.LegB,
		&pos.Direction,
		&pos.EntryZ,
		&pos.Fraction,
		&pos.Status,
		&pos.OpenedAt,
		&pos.ClosedAt,
		&pos.CloseCause,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Position{}, ErrPositionNotFound
		}
		return models.Position{}, err
	}

	return pos, nil
}

// OpenPositions возвращает все открытые позиции в порядке ключей пар
func (r *PositionRepository) OpenPositions() ([]models.Position, error) {
	query := `
		SELECT id, leg_a, leg_b, direction, entry_z, fraction, status, opened_at, closed_at, close_cause
		FROM positions
		WHERE status = $1
		ORDER BY leg_a, leg_b`

	return r.queryPositions(query, models.PositionOpen)
}

// Recent возвращает последние позиции (открытые и закрытые)
func (r *PositionRepository) Recent(limit int) ([]models.Position, error) {
	query := `
		SELECT id, leg_a, leg_b, direction, entry_z, fraction, status, opened_at, closed_at, close_cause
		FROM positions
		ORDER BY opened_at DESC
		LIMIT $1`

	return r.queryPositions(query, limit)
}

// GetByID возвращает позицию по ID
func (r *PositionRepository) GetByID(id int) (*models.Position, error) {
	query := `
		SELECT id, leg_a, leg_b, direction, entry_z, fraction, status, opened_at, closed_at, close_cause
		FROM positions
		WHERE id = $1`

	pos := &models.Position{}
	var closeCause sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&pos.ID,
		&pos.Pair.LegA,
		&pos.Pair.LegB,
		&pos.Direction,
		&pos.EntryZ,
		&pos.Fraction,
		&pos.Status,
		&pos.OpenedAt,
		&pos.ClosedAt,
		&closeCause,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	pos.CloseCause = closeCause.String

	return pos, nil
}

// CountOpen возвращает количество открытых позиций
func (r *PositionRepository) CountOpen() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM positions WHERE status = $1`, models.PositionOpen).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PositionRepository) queryPositions(query string, args ...interface{}) ([]models.Position, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var pos models.Position
		var closeCause sql.NullString
		err := rows.Scan(
			&pos.ID,
			&pos.Pair.LegA,
			&pos.Pair.LegB,
			&pos.Direction,
			&pos.EntryZ,
			&pos.Fraction,
			&pos.Status,
			&pos.OpenedAt,
			&pos.ClosedAt,
			&closeCause,
		)
		if err != nil {
			return nil, err
		}
		pos.CloseCause = closeCause.String
		positions = append(positions, pos)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}
