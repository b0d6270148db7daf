package service

import (
	"errors"
	"time"

	"statarb/internal/models"
	"statarb/internal/repository"
	"statarb/pkg/utils"
)

var errTest = errors.New("storage unavailable")

// ============================================================
// Mock репозитории для unit-тестов сервисов
// ============================================================

func testLogger() *utils.Logger {
	return utils.InitLogger(utils.LogConfig{Level: "error", Format: "json"})
}

type mockPairRepo struct {
	pairs []models.SelectedPair
	err   error
}

func (m *mockPairRepo) Active() ([]models.SelectedPair, error) {
	return m.pairs, m.err
}

func (m *mockPairRepo) Replace(pairs []models.SelectedPair) error {
	if m.err != nil {
		return m.err
	}
	m.pairs = pairs
	return nil
}

func (m *mockPairRepo) Upsert(sp *models.SelectedPair) error {
	return m.err
}

func (m *mockPairRepo) GetByKey(key models.PairKey) (*models.SelectedPair, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.pairs {
		if m.pairs[i].Pair == key {
			return &m.pairs[i], nil
		}
	}
	return nil, repository.ErrSelectedPairNotFound
}

func (m *mockPairRepo) Count() (int, error) {
	return len(m.pairs), m.err
}

type mockPositionRepo struct {
	positions []models.Position
	err       error
}

func (m *mockPositionRepo) Open(pos models.Position) (models.Position, error) {
	if m.err != nil {
		return models.Position{}, m.err
	}
	pos.ID = len(m.positions) + 1
	pos.Status = models.PositionOpen
	m.positions = append(m.positions, pos)
	return pos, nil
}

func (m *mockPositionRepo) Close(pair models.PairKey, closedAt time.Time, cause string) (models.Position, error) {
	if m.err != nil {
		return models.Position{}, m.err
	}
	for i := range m.positions {
		if m.positions[i].Pair == pair && m.positions[i].IsOpen() {
			m.positions[i].Status = models.PositionClosed
			m.positions[i].ClosedAt = &closedAt
			m.positions[i].CloseCause = cause
			return m.positions[i], nil
		}
	}
	return models.Position{}, repository.ErrPositionNotFound
}

func (m *mockPositionRepo) OpenPositions() ([]models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	var open []models.Position
	for _, p := range m.positions {
		if p.IsOpen() {
			open = append(open, p)
		}
	}
	return open, nil
}

func (m *mockPositionRepo) Recent(limit int) ([]models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.positions) {
		limit = len(m.positions)
	}
	return m.positions[:limit], nil
}

func (m *mockPositionRepo) GetByID(id int) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.positions {
		if m.positions[i].ID == id {
			return &m.positions[i], nil
		}
	}
	return nil, repository.ErrPositionNotFound
}

func (m *mockPositionRepo) CountOpen() (int, error) {
	open, err := m.OpenPositions()
	return len(open), err
}

type mockIntentRepo struct {
	intents []models.OrderIntent
	err     error
}

func (m *mockIntentRepo) Create(intent *models.OrderIntent) error {
	if m.err != nil {
		return m.err
	}
	intent.ID = len(m.intents) + 1
	m.intents = append(m.intents, *intent)
	return nil
}

func (m *mockIntentRepo) Recent(limit int) ([]models.OrderIntent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.intents) {
		limit = len(m.intents)
	}
	return m.intents[:limit], nil
}

func (m *mockIntentRepo) GetByPair(key models.PairKey, limit int) ([]models.OrderIntent, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.OrderIntent
	for _, intent := range m.intents {
		if intent.Pair == key {
			out = append(out, intent)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *mockIntentRepo) GetByID(id int) (*models.OrderIntent, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.intents {
		if m.intents[i].ID == id {
			return &m.intents[i], nil
		}
	}
	return nil, repository.ErrIntentNotFound
}

type mockNotificationRepo struct {
	notifications []models.Notification
	err           error
}

func (m *mockNotificationRepo) Create(n *models.Notification) error {
	if m.err != nil {
		return m.err
	}
	n.ID = len(m.notifications) + 1
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockNotificationRepo) Recent(limit int) ([]models.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.notifications) {
		limit = len(m.notifications)
	}
	return m.notifications[:limit], nil
}

func (m *mockNotificationRepo) RecentByTypes(types []string, limit int) ([]models.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []models.Notification
	for _, n := range m.notifications {
		if want[n.Type] {
			out = append(out, n)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var kept []models.Notification
	var deleted int64
	for _, n := range m.notifications {
		if n.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return deleted, nil
}

type mockTickerRepo struct {
	tickers map[models.Ticker]bool // ticker -> active
	err     error
}

func (m *mockTickerRepo) List(onlyActive bool) ([]models.Ticker, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Ticker
	for t, active := range m.tickers {
		if onlyActive && !active {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTickerRepo) Add(t models.Ticker) error {
	if m.err != nil {
		return m.err
	}
	if _, exists := m.tickers[t]; exists {
		return repository.ErrTickerExists
	}
	m.tickers[t] = true
	return nil
}

func (m *mockTickerRepo) SetActive(t models.Ticker, active bool) error {
	if m.err != nil {
		return m.err
	}
	if _, exists := m.tickers[t]; !exists {
		return repository.ErrTickerNotFound
	}
	m.tickers[t] = active
	return nil
}

func (m *mockTickerRepo) Exists(t models.Ticker) (bool, error) {
	_, exists := m.tickers[t]
	return exists, m.err
}

func (m *mockTickerRepo) Count() (int, error) {
	count := 0
	for _, active := range m.tickers {
		if active {
			count++
		}
	}
	return count, m.err
}

type mockPriceRepo struct {
	coverage map[models.Ticker]*repository.PriceCoverage
	latest   map[models.Ticker]*models.PricePoint
	err      error
}

func (m *mockPriceRepo) Coverage(t models.Ticker) (*repository.PriceCoverage, error) {
	if m.err != nil {
		return nil, m.err
	}
	cov, ok := m.coverage[t]
	if !ok {
		return nil, repository.ErrNoCoverage
	}
	return cov, nil
}

func (m *mockPriceRepo) LatestPrice(t models.Ticker) (*models.PricePoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.latest[t]
	if !ok {
		return nil, repository.ErrNoCoverage
	}
	return p, nil
}

type mockScheduler struct {
	state   string
	history []models.RunSummary
	err     error
}

func (m *mockScheduler) TriggerRun() (*models.RunSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	summary := models.RunSummary{
		ID:    int64(len(m.history) + 1),
		State: models.RunStateIdle,
	}
	m.history = append(m.history, summary)
	return &summary, nil
}

func (m *mockScheduler) State() string {
	if m.state == "" {
		return models.RunStateIdle
	}
	return m.state
}

func (m *mockScheduler) History() []models.RunSummary {
	return m.history
}

func (m *mockScheduler) LastRun() *models.RunSummary {
	if len(m.history) == 0 {
		return nil
	}
	last := m.history[len(m.history)-1]
	return &last
}

type mockBroadcaster struct {
	notifications []models.Notification
}

func (m *mockBroadcaster) BroadcastNotification(n *models.Notification) {
	m.notifications = append(m.notifications, *n)
}
