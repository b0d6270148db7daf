package utils

import (
	"math"
	"testing"
)

// floatEquals сравнивает float64 с допуском
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ============================================================
// Тесты Spread / SpreadSeries
// ============================================================

func TestSpread(t *testing.T) {
	tests := []struct {
		name     string
		priceA   float64
		priceB   float64
		beta     float64
		alpha    float64
		expected float64
	}{
		{"нулевой спред", 20.0, 10.0, 2.0, 0.0, 0.0},
		{"положительный спред", 21.0, 10.0, 2.0, 0.0, 1.0},
		{"отрицательный спред", 19.0, 10.0, 2.0, 0.0, -1.0},
		{"с alpha", 25.0, 10.0, 2.0, 5.0, 0.0},
		{"единичная beta", 100.0, 98.0, 1.0, 0.0, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Spread(tt.priceA, tt.priceB, tt.beta, tt.alpha)
			if !floatEquals(result, tt.expected) {
				t.Errorf("Spread(%v, %v, %v, %v) = %v, want %v",
					tt.priceA, tt.priceB, tt.beta, tt.alpha, result, tt.expected)
			}
		})
	}
}

func TestSpreadSeries(t *testing.T) {
	a := []float64{20, 22, 18}
	b := []float64{10, 10, 10}

	series := SpreadSeries(a, b, 2.0, 0.0)
	if len(series) != 3 {
		t.Fatalf("длина серии = %d, ожидалось 3", len(series))
	}

	want := []float64{0, 2, -2}
	for i := range want {
		if !floatEquals(series[i], want[i]) {
			t.Errorf("series[%d] = %v, want %v", i, series[i], want[i])
		}
	}
}

func TestSpreadSeriesMismatchedLengths(t *testing.T) {
	if s := SpreadSeries([]float64{1, 2}, []float64{1}, 1, 0); s != nil {
		t.Errorf("при разных длинах ожидался nil, получено %v", s)
	}
	if s := SpreadSeries(nil, nil, 1, 0); s != nil {
		t.Errorf("при пустых рядах ожидался nil, получено %v", s)
	}
}

// ============================================================
// Тесты RollingMeanStd / LatestZScore
// ============================================================

func TestRollingMeanStd(t *testing.T) {
	series := []float64{100, 100, 1, 2, 3, 4, 5}

	// окно 5 покрывает только хвост [1..5]
	mean, std, ok := RollingMeanStd(series, 5)
	if !ok {
		t.Fatal("RollingMeanStd вернул ok=false")
	}
	if !floatEquals(mean, 3.0) {
		t.Errorf("mean = %v, want 3.0", mean)
	}
	// выборочное СКО [1,2,3,4,5] = sqrt(2.5)
	if !floatEquals(std, math.Sqrt(2.5)) {
		t.Errorf("std = %v, want %v", std, math.Sqrt(2.5))
	}
}

func TestRollingMeanStdInvalidWindow(t *testing.T) {
	series := []float64{1, 2, 3}

	if _, _, ok := RollingMeanStd(series, 1); ok {
		t.Error("окно 1 должно быть отклонено")
	}
	if _, _, ok := RollingMeanStd(series, 4); ok {
		t.Error("окно больше серии должно быть отклонено")
	}
}

func TestLatestZScore(t *testing.T) {
	// Хвост [1,2,3,4,10]: mean=4, std=sqrt(12.5), z=(10-4)/std
	series := []float64{1, 2, 3, 4, 10}

	z, ok := LatestZScore(series, 5)
	if !ok {
		t.Fatal("LatestZScore вернул ok=false")
	}
	want := 6.0 / math.Sqrt(12.5)
	if !floatEquals(z, want) {
		t.Errorf("z = %v, want %v", z, want)
	}
}

func TestLatestZScoreZeroVariance(t *testing.T) {
	// Константный спред: std=0, сигнал невозможен
	series := []float64{5, 5, 5, 5, 5}

	if _, ok := LatestZScore(series, 5); ok {
		t.Error("при нулевой дисперсии ожидался ok=false")
	}
}

// ============================================================
// Тесты пороговых предикатов
// ============================================================

func TestEntryExitStopPredicates(t *testing.T) {
	tests := []struct {
		name  string
		fn    func() bool
		want  bool
	}{
		{"вход на положительном z", func() bool { return IsEntrySignal(2.5, 2.0) }, true},
		{"вход на отрицательном z", func() bool { return IsEntrySignal(-2.5, 2.0) }, true},
		{"нет входа внутри порога", func() bool { return IsEntrySignal(1.5, 2.0) }, false},
		{"вход ровно на пороге", func() bool { return IsEntrySignal(2.0, 2.0) }, true},
		{"выход при возврате к нулю", func() bool { return IsExitSignal(0.3, 0.5) }, true},
		{"нет выхода вне порога", func() bool { return IsExitSignal(1.0, 0.5) }, false},
		{"stop-loss срабатывает", func() bool { return IsStopLoss(4.5, 4.0) }, true},
		{"stop-loss на отрицательном z", func() bool { return IsStopLoss(-4.5, 4.0) }, true},
		{"stop-loss не задан", func() bool { return IsStopLoss(100, 0) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================
// Тесты простых хелперов
// ============================================================

func TestClamp(t *testing.T) {
	tests := []struct {
		value, min, max, expected float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := Clamp(tt.value, tt.min, tt.max); !floatEquals(got, tt.expected) {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v",
				tt.value, tt.min, tt.max, got, tt.expected)
		}
	}
}

func TestMinMaxAbs(t *testing.T) {
	if Min(1, 2) != 1 {
		t.Error("Min(1,2) != 1")
	}
	if Max(1, 2) != 2 {
		t.Error("Max(1,2) != 2")
	}
	if Abs(-3) != 3 {
		t.Error("Abs(-3) != 3")
	}
}
