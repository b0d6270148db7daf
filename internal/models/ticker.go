package models

import "time"

// Ticker - идентификатор торгуемого инструмента.
// Неизменяем после регистрации в каталоге.
type Ticker string

// PricePoint - одно наблюдение цены
type PricePoint struct {
	Timestamp time.Time `json:"timestamp" db:"ts"`
	Price     float64   `json:"price" db:"price"`
}

// PriceSeries - упорядоченная история цен одного тикера.
// Инвариант: timestamps строго возрастают, без дубликатов.
// Ядро получает read-only вид на серию в рамках одного прогона.
type PriceSeries struct {
	Ticker Ticker       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Len возвращает количество наблюдений
func (s *PriceSeries) Len() int {
	return len(s.Points)
}

// Prices возвращает только цены (для статистических расчётов)
func (s *PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Last возвращает последнее наблюдение и true, либо zero value и false
func (s *PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}
