package stats

import "math"

// ADFResult - результат augmented Dickey-Fuller теста
type ADFResult struct {
	Tau    float64 // t-статистика коэффициента при уровне
	PValue float64
	Lags   int // количество лагов разностей в регрессии
	N      int // наблюдений в регрессии
}

// ADFTest проверяет стационарность серии (нулевая гипотеза - единичный корень).
//
// Регрессия: Δs_t = c + γ·s_{t-1} + Σ_{i=1..lags} φ_i·Δs_{t-i} + ε
// Tau = γ̂/se(γ̂). Чем отрицательнее tau, тем сильнее отвергается
// нестационарность.
//
// Серия здесь - это остатки коинтеграционной регрессии (спред),
// поэтому p-value берётся с поверхности критических значений
// Engle-Granger для двух переменных, а не чистого ADF.
func ADFTest(series []float64, lags int) (*ADFResult, error) {
	if lags < 0 {
		lags = 0
	}
	if !AllFinite(series) {
		return nil, ErrNonFinite
	}
	n := len(series)
	// Нужно достаточно строк: lags+1 теряются на разностях,
	// плюс минимум 10 степеней свободы после вычета регрессоров.
	rows := n - lags - 1
	k := lags + 2 // константа + уровень + lags разностей
	if rows < k+10 {
		return nil, ErrInsufficientData
	}

	d := Diff(series)

	y := make([]float64, rows)
	X := make([][]float64, rows)
	for t := 0; t < rows; t++ {
		// Индекс в исходной серии: наблюдение lags+1+t
		i := lags + 1 + t
		y[t] = d[i-1] // Δs_i
		row := make([]float64, k)
		row[0] = 1
		row[1] = series[i-1] // уровень s_{i-1}
		for j := 1; j <= lags; j++ {
			row[1+j] = d[i-1-j] // Δs_{i-j}
		}
		X[t] = row
	}

	res, err := OLS(y, X)
	if err != nil {
		return nil, err
	}
	if res.StdErr[1] == 0 {
		return nil, ErrIllConditioned
	}

	tau := res.Coef[1] / res.StdErr[1]
	return &ADFResult{
		Tau:    tau,
		PValue: engleGrangerPValue(tau),
		Lags:   lags,
		N:      rows,
	}, nil
}

// Критические значения MacKinnon (2010) для residual-based теста
// Engle-Granger с константой, две переменные. Пары (tau, z), где
// z - нормальная квантиль соответствующего уровня значимости:
// 1% → -2.3263, 5% → -1.6449, 10% → -1.2816.
var egKnots = [][2]float64{
	{-3.8964, -2.3263}, // 1%
	{-3.3361, -1.6449}, // 5%
	{-3.0445, -1.2816}, // 10%
}

// engleGrangerPValue переводит tau в приближённый p-value.
//
// Интерполяция линейна в пробит-шкале: z(tau) кусочно-линейна по
// табличным узлам, за пределами таблицы экстраполируется наклоном
// крайнего сегмента, затем p = Φ(z). Монотонна по tau, детерминирована.
func engleGrangerPValue(tau float64) float64 {
	z := interpProbit(tau, egKnots)
	p := normCDF(z)
	if p < 1e-6 {
		p = 1e-6
	}
	if p > 0.9999 {
		p = 0.9999
	}
	return p
}

func interpProbit(tau float64, knots [][2]float64) float64 {
	first := knots[0]
	last := knots[len(knots)-1]

	if tau <= first[0] {
		slope := (knots[1][1] - first[1]) / (knots[1][0] - first[0])
		return first[1] + slope*(tau-first[0])
	}
	if tau >= last[0] {
		prev := knots[len(knots)-2]
		slope := (last[1] - prev[1]) / (last[0] - prev[0])
		return last[1] + slope*(tau-last[0])
	}
	for i := 1; i < len(knots); i++ {
		if tau <= knots[i][0] {
			a, b := knots[i-1], knots[i]
			frac := (tau - a[0]) / (b[0] - a[0])
			return a[1] + frac*(b[1]-a[1])
		}
	}
	return last[1]
}

// normCDF - функция распределения стандартной нормали
func normCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
