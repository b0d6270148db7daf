package stats

import "math"

// Pearson возвращает коэффициент корреляции Пирсона двух серий равной длины.
//
// Возвращает ErrInsufficientData при n < 2, ErrNonFinite при NaN/Inf во входе,
// ErrIllConditioned если одна из серий имеет нулевую дисперсию
// (корреляция не определена).
func Pearson(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, ErrInsufficientData
	}
	if !AllFinite(xs) || !AllFinite(ys) {
		return 0, ErrNonFinite
	}

	mx := Mean(xs)
	my := Mean(ys)

	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	if sxx < epsVariance || syy < epsVariance {
		return 0, ErrIllConditioned
	}

	r := sxy / math.Sqrt(sxx*syy)
	// Числовая погрешность может вывести |r| чуть за 1
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	return r, nil
}

// epsVariance - порог вырожденности суммы квадратов отклонений
const epsVariance = 1e-12
