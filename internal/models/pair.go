package models

import (
	"fmt"
	"strings"
	"time"
)

// PairKey - канонический ключ неупорядоченной пары тикеров.
// Нога A всегда лексикографически меньше ноги B, чтобы пара (X,Y)
// и пара (Y,X) давали один и тот же ключ в хранилище и при merge.
type PairKey struct {
	LegA Ticker `json:"leg_a" db:"leg_a"`
	LegB Ticker `json:"leg_b" db:"leg_b"`
}

// NewPairKey создаёт канонический ключ из двух тикеров
func NewPairKey(a, b Ticker) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{LegA: a, LegB: b}
}

// String возвращает строковое представление "A-B".
// Используется в логах, метриках и путях REST API.
func (k PairKey) String() string {
	return string(k.LegA) + "-" + string(k.LegB)
}

// ParsePairKey разбирает строку "A-B" в канонический ключ
func ParsePairKey(s string) (PairKey, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PairKey{}, fmt.Errorf("invalid pair key %q", s)
	}
	return NewPairKey(Ticker(parts[0]), Ticker(parts[1])), nil
}

// Less определяет детерминированный порядок пар при агрегации
func (k PairKey) Less(other PairKey) bool {
	if k.LegA != other.LegA {
		return k.LegA < other.LegA
	}
	return k.LegB < other.LegB
}

// PairCandidate - пара, прошедшая корреляционный отбор.
// Создаётся скринером, неизменяема.
type PairCandidate struct {
	Pair        PairKey `json:"pair"`
	Correlation float64 `json:"correlation"` // коэффициент Пирсона по лог-доходностям
	Overlap     int     `json:"overlap"`     // количество общих наблюдений
}

// SelectedPair - пара, допущенная селектором к торговле.
// Живёт между прогонами до тех пор, пока проходит ре-валидацию.
// Hedge ratio пересчитывается заново на каждом прогоне - значение
// из прошлого прогона никогда не переиспользуется.
type SelectedPair struct {
	Pair       PairKey   `json:"pair" db:"pair"`
	HedgeRatio float64   `json:"hedge_ratio" db:"hedge_ratio"` // β регрессии A на B
	Intercept  float64   `json:"intercept" db:"intercept"`     // α регрессии
	LeadingLeg Ticker    `json:"leading_leg" db:"leading_leg"`
	Score      float64   `json:"score" db:"score"` // композитный ранг
	SelectedAt time.Time `json:"selected_at" db:"selected_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
