package marketdata

import (
	"time"

	"statarb/internal/models"
)

// Align строит выровненные по общим timestamp'ам ценовые векторы пары.
// Серии внутри снапшота упорядочены по времени, поэтому пересечение
// вычисляется слиянием двух указателей за O(n+m).
//
// Возвращает срезы одинаковой длины: цена A и цена B в каждый общий момент.
func Align(a, b *models.PriceSeries) (pricesA, pricesB []float64) {
	if a == nil || b == nil {
		return nil, nil
	}

	i, j := 0, 0
	for i < len(a.Points) && j < len(b.Points) {
		ta, tb := a.Points[i].Timestamp, b.Points[j].Timestamp
		switch {
		case ta.Equal(tb):
			pricesA = append(pricesA, a.Points[i].Price)
			pricesB = append(pricesB, b.Points[j].Price)
			i++
			j++
		case ta.Before(tb):
			i++
		default:
			j++
		}
	}

	return pricesA, pricesB
}

// AlignWithTimes - как Align, но дополнительно возвращает сами timestamps.
// Нужен генератору сигналов, который привязывает z-оценку к моменту наблюдения.
func AlignWithTimes(a, b *models.PriceSeries) (pricesA, pricesB []float64, times []time.Time) {
	if a == nil || b == nil {
		return nil, nil, nil
	}

	i, j := 0, 0
	for i < len(a.Points) && j < len(b.Points) {
		ta, tb := a.Points[i].Timestamp, b.Points[j].Timestamp
		switch {
		case ta.Equal(tb):
			pricesA = append(pricesA, a.Points[i].Price)
			pricesB = append(pricesB, b.Points[j].Price)
			times = append(times, ta)
			i++
			j++
		case ta.Before(tb):
			i++
		default:
			j++
		}
	}

	return pricesA, pricesB, times
}
