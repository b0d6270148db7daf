package pipeline

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"statarb/internal/marketdata"
	"statarb/internal/models"
	"statarb/pkg/utils"
)

// ============ Общие фейки и синтетика для тестов пакета ============

func testLogger() *utils.Logger {
	return utils.InitLogger(utils.LogConfig{Level: "error", Format: "json"})
}

func day(n int) time.Time {
	base := time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, n)
}

func series(ticker models.Ticker, prices []float64) *models.PriceSeries {
	pts := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = models.PricePoint{Timestamp: day(i), Price: p}
	}
	return &models.PriceSeries{Ticker: ticker, Points: pts}
}

// plantedUniverse строит вселенную {A, B, C}: A и B коинтегрированы
// (P_A = 2·P_B + стационарный шум), причём B отрабатывает 30% движения
// общего тренда с задержкой в день - отсюда направление A→B. C -
// независимое случайное блуждание. Детерминировано при фиксированном seed.
func plantedUniverse(seed int64, n int) marketdata.Snapshot {
	rng := rand.New(rand.NewSource(seed))

	w := make([]float64, n) // общий тренд, случайное блуждание
	w[0] = 0
	for i := 1; i < n; i++ {
		w[i] = w[i-1] + rng.NormFloat64()
	}

	// s_t = 0.3·s_{t-1} + ε: шум спреда, стационарный AR(1),
	// независимый от тренда - иначе МНК смещает оценку beta
	s := make([]float64, n)
	for i := 2; i < n; i++ {
		s[i] = 0.3*s[i-1] + 0.44*rng.NormFloat64()
	}

	pa := make([]float64, n)
	pb := make([]float64, n)
	pc := make([]float64, n)
	pc[0] = 80
	for i := 0; i < n; i++ {
		pa[i] = 100 + w[i]
		lagged := w[i]
		if i > 0 {
			lagged = w[i-1]
		}
		// спред P_A - 2·P_B = 0.3·ΔW + s: стационарен, а retB несёт
		// вчерашний retA
		pb[i] = (100 + 0.7*w[i] + 0.3*lagged - s[i]) / 2
		if i > 0 {
			pc[i] = pc[i-1] + rng.NormFloat64()
		}
	}

	return marketdata.Snapshot{
		"AAA": series("AAA", pa),
		"BBB": series("BBB", pb),
		"CCC": series("CCC", pc),
	}
}

// spikeLastPrice задирает последнюю цену тикера, чтобы z-score спреда
// ушёл за порог входа
func spikeLastPrice(snap marketdata.Snapshot, ticker models.Ticker, delta float64) {
	pts := snap[ticker].Points
	pts[len(pts)-1].Price += delta
}

// ---- marketdata.Accessor ----

type fakeAccessor struct {
	mu       sync.Mutex
	snap     marketdata.Snapshot
	err      error // ошибка Universe, имитирует отказ хранилища
	blockCtx bool  // Universe ждёт отмены контекста
	started  chan struct{}
}

func newFakeAccessor(snap marketdata.Snapshot) *fakeAccessor {
	return &fakeAccessor{snap: snap, started: make(chan struct{}, 8)}
}

func (f *fakeAccessor) Universe(ctx context.Context) ([]models.Ticker, error) {
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.blockCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	tickers := make([]models.Ticker, 0, len(f.snap))
	for t := range f.snap {
		tickers = append(tickers, t)
	}
	sort.Slice(tickers, func(i, j int) bool { return tickers[i] < tickers[j] })
	return tickers, nil
}

func (f *fakeAccessor) History(ctx context.Context, ticker models.Ticker, window utils.TimeRange, minPoints int) (*models.PriceSeries, error) {
	s, ok := f.snap[ticker]
	if !ok || s.Len() == 0 {
		return nil, marketdata.ErrDataUnavailable
	}
	if s.Len() < minPoints {
		return s, marketdata.ErrPartialData
	}
	return s, nil
}

// ---- PairStore ----

type fakePairStore struct {
	mu     sync.Mutex
	active []models.SelectedPair
	err    error
}

func (f *fakePairStore) Active() ([]models.SelectedPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.SelectedPair, len(f.active))
	copy(out, f.active)
	return out, nil
}

func (f *fakePairStore) Replace(pairs []models.SelectedPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.active = make([]models.SelectedPair, len(pairs))
	copy(f.active, pairs)
	return nil
}

// ---- PositionStore ----

type fakePositionStore struct {
	mu     sync.Mutex
	nextID int
	open   map[models.PairKey]models.Position
	closed []models.Position
}

func newFakePositionStore() *fakePositionStore {
	return &fakePositionStore{open: make(map[models.PairKey]models.Position)}
}

func (f *fakePositionStore) Open(pos models.Position) (models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	pos.ID = f.nextID
	f.open[pos.Pair] = pos
	return pos, nil
}

func (f *fakePositionStore) Close(pair models.PairKey, closedAt time.Time, cause string) (models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pos := f.open[pair]
	delete(f.open, pair)
	pos.Status = models.PositionClosed
	pos.ClosedAt = &closedAt
	pos.CloseCause = cause
	f.closed = append(f.closed, pos)
	return pos, nil
}

func (f *fakePositionStore) OpenPositions() ([]models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Position, 0, len(f.open))
	for _, p := range f.open {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pair.Less(out[j].Pair) })
	return out, nil
}

// ---- IntentEmitter ----

type fakeEmitter struct {
	mu      sync.Mutex
	nextID  int
	intents []models.OrderIntent
	err     error
}

func (f *fakeEmitter) Emit(intent models.OrderIntent) (models.OrderIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.OrderIntent{}, f.err
	}
	f.nextID++
	intent.ID = f.nextID
	f.intents = append(f.intents, intent)
	return intent, nil
}

// ---- Notifier ----

type fakeNotifier struct {
	mu     sync.Mutex
	events []models.Notification
}

func (f *fakeNotifier) Notify(n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, n)
}

func (f *fakeNotifier) byType(typ string) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.events {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// sampleStd считает выборочное стандартное отклонение хвоста среза
func sampleStd(xs []float64, window int) float64 {
	tail := xs[len(xs)-window:]
	var sum float64
	for _, x := range tail {
		sum += x
	}
	mean := sum / float64(len(tail))
	var ss float64
	for _, x := range tail {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(tail)-1))
}
