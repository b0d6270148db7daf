package utils

import (
	"math"
)

// math.go - математические утилиты для парного трейдинга
//
// Назначение:
// Вспомогательные функции для работы со спредом пары и z-оценками.
// Все функции являются чистыми (pure functions) без побочных эффектов.
//
// Функции:
// - Spread: значение спреда для одного наблюдения
// - SpreadSeries: серия спреда по двум ценовым рядам
// - RollingMeanStd: скользящие среднее и СКО последнего окна
// - LatestZScore: z-оценка последней точки спреда

// Spread вычисляет остаток коинтеграционной регрессии для одной пары цен.
//
// Формула:
//
//	spread = P_A - β × P_B - α
//
// Параметры:
//   - priceA: цена ноги A
//   - priceB: цена ноги B
//   - beta: коэффициент хеджирования
//   - alpha: свободный член регрессии
//
// Возвращает:
//   - Значение спреда (может быть любого знака)
func Spread(priceA, priceB, beta, alpha float64) float64 {
	return priceA - beta*priceB - alpha
}

// SpreadSeries строит серию спреда по двум выровненным ценовым рядам.
//
// Ряды должны иметь одинаковую длину. При несовпадении длин
// возвращается nil.
func SpreadSeries(pricesA, pricesB []float64, beta, alpha float64) []float64 {
	if len(pricesA) != len(pricesB) || len(pricesA) == 0 {
		return nil
	}
	out := make([]float64, len(pricesA))
	for i := range pricesA {
		out[i] = Spread(pricesA[i], pricesB[i], beta, alpha)
	}
	return out
}

// RollingMeanStd вычисляет среднее и выборочное СКО последних window точек.
//
// Параметры:
//   - series: исходная серия
//   - window: размер окна (должен быть >= 2 и <= len(series))
//
// Возвращает:
//   - mean, std последнего окна
//   - ok=false если окно некорректно
func RollingMeanStd(series []float64, window int) (mean, std float64, ok bool) {
	n := len(series)
	if window < 2 || window > n {
		return 0, 0, false
	}

	tail := series[n-window:]
	var sum float64
	for _, v := range tail {
		sum += v
	}
	mean = sum / float64(window)

	var ss float64
	for _, v := range tail {
		d := v - mean
		ss += d * d
	}
	std = math.Sqrt(ss / float64(window-1))

	return mean, std, true
}

// LatestZScore вычисляет z-оценку последней точки серии относительно
// скользящего окна.
//
// Формула:
//
//	z = (x_последний - mean_окна) / std_окна
//
// Возвращает:
//   - z-оценка
//   - ok=false если окно некорректно или std == 0 (вырожденный спред)
func LatestZScore(series []float64, window int) (z float64, ok bool) {
	mean, std, ok := RollingMeanStd(series, window)
	if !ok || std == 0 {
		return 0, false
	}
	last := series[len(series)-1]
	return (last - mean) / std, true
}

// IsEntrySignal проверяет условие входа: |z| достигла порога входа.
func IsEntrySignal(z, entryThreshold float64) bool {
	return math.Abs(z) >= entryThreshold
}

// IsExitSignal проверяет условие выхода: |z| вернулась к порогу выхода.
func IsExitSignal(z, exitThreshold float64) bool {
	return math.Abs(z) <= exitThreshold
}

// IsStopLoss проверяет условие принудительного выхода: |z| ушла за stop-loss.
func IsStopLoss(z, stopThreshold float64) bool {
	if stopThreshold <= 0 {
		return false // SL не задан
	}
	return math.Abs(z) >= stopThreshold
}

// Abs возвращает абсолютное значение числа.
func Abs(x float64) float64 {
	return math.Abs(x)
}

// Min возвращает минимум из двух чисел.
func Min(a, b float64) float64 {
	return math.Min(a, b)
}

// Max возвращает максимум из двух чисел.
func Max(a, b float64) float64 {
	return math.Max(a, b)
}

// Clamp ограничивает значение диапазоном [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
