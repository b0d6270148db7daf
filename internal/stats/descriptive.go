package stats

import (
	"errors"
	"math"
)

// Ошибки статистических расчётов
var (
	// ErrInsufficientData - наблюдений меньше, чем требует тест
	ErrInsufficientData = errors.New("insufficient observations")
	// ErrNonFinite - входная серия содержит NaN или Inf
	ErrNonFinite = errors.New("series contains non-finite values")
	// ErrIllConditioned - вырожденная регрессия (near-zero дисперсия регрессора)
	ErrIllConditioned = errors.New("regression is ill-conditioned")
)

// Mean возвращает среднее арифметическое
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance возвращает выборочную дисперсию (делитель n-1)
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}

// StdDev возвращает выборочное стандартное отклонение
func StdDev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// MeanStd возвращает среднее и стандартное отклонение за один проход
func MeanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean = Mean(xs)
	if len(xs) < 2 {
		return mean, 0
	}
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return mean, math.Sqrt(sum / float64(len(xs)-1))
}

// Diff возвращает первые разности серии: out[i] = xs[i+1] - xs[i]
func Diff(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// LogReturns возвращает логарифмические доходности: ln(p_t / p_{t-1}).
// Неположительные цены дают ErrNonFinite - лог от них не определён.
func LogReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, ErrInsufficientData
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i] <= 0 || prices[i-1] <= 0 {
			return nil, ErrNonFinite
		}
		out[i-1] = math.Log(prices[i] / prices[i-1])
	}
	return out, nil
}

// AllFinite проверяет что серия не содержит NaN/Inf
func AllFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
