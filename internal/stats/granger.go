package stats

// GrangerResult - результат теста Грейнджера для одного направления x→y
type GrangerResult struct {
	MinPValue float64 // минимальный p-value по лагам 1..maxLag
	BestLag   int     // лаг с минимальным p-value
}

// GrangerTest проверяет, улучшают ли прошлые значения x предсказание y
// сверх собственных лагов y (направление x→y).
//
// Для каждого лага m в 1..maxLag:
//
//	ограниченная:  y_t = c + Σ a_i·y_{t-i}
//	полная:        y_t = c + Σ a_i·y_{t-i} + Σ b_i·x_{t-i}
//	F = ((RSS_r - RSS_u)/m) / (RSS_u/(n - 2m - 1))
//
// Обе серии предполагаются стационарными (на входе - первые разности
// лог-цен). Возвращается минимальный p-value по рассмотренным лагам.
func GrangerTest(x, y []float64, maxLag int) (*GrangerResult, error) {
	if maxLag < 1 {
		maxLag = 1
	}
	if len(x) != len(y) {
		return nil, ErrInsufficientData
	}
	if !AllFinite(x) || !AllFinite(y) {
		return nil, ErrNonFinite
	}

	best := &GrangerResult{MinPValue: 1}
	tested := false

	for lag := 1; lag <= maxLag; lag++ {
		p, err := grangerAtLag(x, y, lag)
		if err == ErrInsufficientData {
			break // более длинные лаги тем более не влезут
		}
		if err != nil {
			return nil, err
		}
		tested = true
		if p < best.MinPValue {
			best.MinPValue = p
			best.BestLag = lag
		}
	}

	if !tested {
		return nil, ErrInsufficientData
	}
	return best, nil
}

func grangerAtLag(x, y []float64, lag int) (float64, error) {
	n := len(y)
	rows := n - lag
	kFull := 1 + 2*lag // константа + lags(y) + lags(x)
	// Степени свободы остатка полной модели должны быть положительными
	// с запасом, иначе F вырожден.
	if rows < kFull+10 {
		return 0, ErrInsufficientData
	}

	target := make([]float64, rows)
	restricted := make([][]float64, rows)
	full := make([][]float64, rows)

	for t := 0; t < rows; t++ {
		i := lag + t
		target[t] = y[i]

		r := make([]float64, 1+lag)
		f := make([]float64, kFull)
		r[0] = 1
		f[0] = 1
		for j := 1; j <= lag; j++ {
			r[j] = y[i-j]
			f[j] = y[i-j]
			f[lag+j] = x[i-j]
		}
		restricted[t] = r
		full[t] = f
	}

	resR, err := OLS(target, restricted)
	if err != nil {
		return 0, err
	}
	resF, err := OLS(target, full)
	if err != nil {
		return 0, err
	}

	dfDenom := rows - kFull
	if resF.RSS < epsVariance {
		// Полная модель объясняет всё - предельно значимо
		return 1e-6, nil
	}

	f := ((resR.RSS - resF.RSS) / float64(lag)) / (resF.RSS / float64(dfDenom))
	if f < 0 {
		f = 0
	}
	return FSurvival(f, lag, dfDenom), nil
}
