package handlers

import (
	"errors"
	"time"

	"statarb/internal/models"
	"statarb/internal/repository"
	"statarb/internal/service"
)

// ErrMockDatabase - ошибка хранилища для негативных сценариев
var ErrMockDatabase = errors.New("mock database error")

// ============ MockPairService ============

type MockPairService struct {
	pairs   []models.SelectedPair
	intents []models.OrderIntent
	err     error
}

func NewMockPairService() *MockPairService {
	return &MockPairService{}
}

func (m *MockPairService) SetError(err error) { m.err = err }

func (m *MockPairService) AddPair(legA, legB string, hedgeRatio float64) {
	m.pairs = append(m.pairs, models.SelectedPair{
		Pair:       models.NewPairKey(models.Ticker(legA), models.Ticker(legB)),
		HedgeRatio: hedgeRatio,
		LeadingLeg: models.Ticker(legA),
		SelectedAt: time.Now(),
	})
}

func (m *MockPairService) AddIntent(legA, legB string, kind models.SignalKind) {
	m.intents = append(m.intents, models.OrderIntent{
		ID:        len(m.intents) + 1,
		Pair:      models.NewPairKey(models.Ticker(legA), models.Ticker(legB)),
		Kind:      kind,
		CreatedAt: time.Now(),
	})
}

func (m *MockPairService) GetActivePairs() ([]models.SelectedPair, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pairs, nil
}

func (m *MockPairService) GetPair(key string) (*models.SelectedPair, error) {
	if m.err != nil {
		return nil, m.err
	}
	pk, err := models.ParsePairKey(key)
	if err != nil {
		return nil, service.ErrInvalidPairKey
	}
	for i := range m.pairs {
		if m.pairs[i].Pair == pk {
			return &m.pairs[i], nil
		}
	}
	return nil, service.ErrPairNotFound
}

func (m *MockPairService) GetPairIntents(key string, limit int) ([]models.OrderIntent, error) {
	if m.err != nil {
		return nil, m.err
	}
	pk, err := models.ParsePairKey(key)
	if err != nil {
		return nil, service.ErrInvalidPairKey
	}
	var out []models.OrderIntent
	for _, intent := range m.intents {
		if intent.Pair == pk && len(out) < limit {
			out = append(out, intent)
		}
	}
	return out, nil
}

func (m *MockPairService) GetRecentIntents(limit int) ([]models.OrderIntent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.intents) {
		limit = len(m.intents)
	}
	return m.intents[:limit], nil
}

func (m *MockPairService) Count() (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.pairs), nil
}

// ============ MockPositionService ============

type MockPositionService struct {
	positions []models.Position
	err       error
}

func NewMockPositionService() *MockPositionService {
	return &MockPositionService{}
}

func (m *MockPositionService) SetError(err error) { m.err = err }

func (m *MockPositionService) AddPosition(legA, legB string, open bool) {
	pos := models.Position{
		ID:        len(m.positions) + 1,
		Pair:      models.NewPairKey(models.Ticker(legA), models.Ticker(legB)),
		Direction: models.DirectionLongSpread,
		Status:    models.PositionOpen,
		OpenedAt:  time.Now(),
	}
	if !open {
		closedAt := time.Now()
		pos.Status = models.PositionClosed
		pos.ClosedAt = &closedAt
		pos.CloseCause = models.CloseCauseExit
	}
	m.positions = append(m.positions, pos)
}

func (m *MockPositionService) GetOpenPositions() ([]models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Position
	for _, p := range m.positions {
		if p.Status == models.PositionOpen {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPositionService) GetRecentPositions(limit int) ([]models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.positions) {
		limit = len(m.positions)
	}
	return m.positions[:limit], nil
}

func (m *MockPositionService) GetPosition(id int) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.positions {
		if m.positions[i].ID == id {
			return &m.positions[i], nil
		}
	}
	return nil, service.ErrPositionNotFound
}

func (m *MockPositionService) CountOpen() (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	open, _ := m.GetOpenPositions()
	return len(open), nil
}

// ============ MockRunService ============

type MockRunService struct {
	state   string
	history []models.RunSummary
	err     error
}

func NewMockRunService() *MockRunService {
	return &MockRunService{state: models.RunStateIdle}
}

func (m *MockRunService) SetError(err error) { m.err = err }

func (m *MockRunService) AddRun(summary models.RunSummary) {
	m.history = append(m.history, summary)
}

func (m *MockRunService) Trigger() (*models.RunSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	summary := models.RunSummary{
		ID:         int64(len(m.history) + 1),
		State:      models.RunStateIdle,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	m.history = append(m.history, summary)
	return &summary, nil
}

func (m *MockRunService) Status() service.RunStatus {
	status := service.RunStatus{State: m.state, Runs: len(m.history)}
	if len(m.history) > 0 {
		status.LastRun = &m.history[len(m.history)-1]
	}
	return status
}

func (m *MockRunService) History(limit int) []models.RunSummary {
	out := make([]models.RunSummary, 0, len(m.history))
	for i := len(m.history) - 1; i >= 0; i-- {
		out = append(out, m.history[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// ============ MockNotificationService ============

type MockNotificationService struct {
	notifications []models.Notification
	getErr        error
	cleanupErr    error
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SetError(op string, err error) {
	switch op {
	case "get":
		m.getErr = err
	case "cleanup":
		m.cleanupErr = err
	}
}

func (m *MockNotificationService) AddNotification(ntype, severity, message string) {
	m.notifications = append(m.notifications, models.Notification{
		ID:        len(m.notifications) + 1,
		Timestamp: time.Now(),
		Type:      ntype,
		Severity:  severity,
		Message:   message,
	})
}

func (m *MockNotificationService) GetNotifications(types []string, limit int) ([]models.Notification, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	var out []models.Notification
	for _, n := range m.notifications {
		if len(types) > 0 && !wanted[n.Type] {
			continue
		}
		out = append(out, n)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockNotificationService) Cleanup(olderThan time.Duration) (int64, error) {
	if m.cleanupErr != nil {
		return 0, m.cleanupErr
	}
	deleted := int64(len(m.notifications))
	m.notifications = nil
	return deleted, nil
}

// ============ MockTickerService ============

type MockTickerService struct {
	tickers  map[models.Ticker]bool // ticker -> active
	coverage map[models.Ticker]*repository.PriceCoverage
	prices   map[models.Ticker]*models.PricePoint
	err      error
}

func NewMockTickerService() *MockTickerService {
	return &MockTickerService{
		tickers:  make(map[models.Ticker]bool),
		coverage: make(map[models.Ticker]*repository.PriceCoverage),
		prices:   make(map[models.Ticker]*models.PricePoint),
	}
}

func (m *MockTickerService) SetError(err error) { m.err = err }

func (m *MockTickerService) AddExisting(ticker string, active bool) {
	m.tickers[models.Ticker(ticker)] = active
}

func (m *MockTickerService) SetCoverage(ticker string, points int) {
	t := models.Ticker(ticker)
	m.coverage[t] = &repository.PriceCoverage{Ticker: t, Points: points}
}

func (m *MockTickerService) SetPrice(ticker string, price float64) {
	t := models.Ticker(ticker)
	m.prices[t] = &models.PricePoint{Timestamp: time.Now(), Price: price}
}

func (m *MockTickerService) normalize(ticker string) (models.Ticker, error) {
	if ticker == "" {
		return "", service.ErrInvalidTicker
	}
	return models.Ticker(ticker), nil
}

func (m *MockTickerService) ListTickers(onlyActive bool) ([]models.Ticker, error) {
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

func (m *MockTickerService) AddTicker(ticker string) error {
	if m.err != nil {
		return m.err
	}
	t, err := m.normalize(ticker)
	if err != nil {
		return err
	}
	if _, ok := m.tickers[t]; ok {
		return service.ErrTickerExists
	}
	m.tickers[t] = true
	return nil
}

func (m *MockTickerService) SetTickerActive(ticker string, active bool) error {
	if m.err != nil {
		return m.err
	}
	t, err := m.normalize(ticker)
	if err != nil {
		return err
	}
	if _, ok := m.tickers[t]; !ok {
		return service.ErrTickerNotFound
	}
	m.tickers[t] = active
	return nil
}

func (m *MockTickerService) GetCoverage(ticker string) (*repository.PriceCoverage, error) {
	if m.err != nil {
		return nil, m.err
	}
	t, err := m.normalize(ticker)
	if err != nil {
		return nil, err
	}
	cov, ok := m.coverage[t]
	if !ok {
		return nil, service.ErrNoCoverage
	}
	return cov, nil
}

func (m *MockTickerService) GetLatestPrice(ticker string) (*models.PricePoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	t, err := m.normalize(ticker)
	if err != nil {
		return nil, err
	}
	price, ok := m.prices[t]
	if !ok {
		return nil, service.ErrNoCoverage
	}
	return price, nil
}
