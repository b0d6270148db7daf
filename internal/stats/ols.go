package stats

import "math"

// SimpleOLS оценивает линейную регрессию y = α + β·x методом наименьших
// квадратов (закрытая форма). Используется для hedge ratio: нога A на ногу B.
//
// Возвращает ErrIllConditioned при near-zero дисперсии x: β в этом случае
// не определён и пара должна получить FAILED_NUMERIC, а не панику.
func SimpleOLS(y, x []float64) (alpha, beta float64, err error) {
	if len(y) != len(x) || len(y) < 3 {
		return 0, 0, ErrInsufficientData
	}
	if !AllFinite(y) || !AllFinite(x) {
		return 0, 0, ErrNonFinite
	}

	mx := Mean(x)
	my := Mean(y)

	var sxy, sxx float64
	for i := range x {
		dx := x[i] - mx
		sxy += dx * (y[i] - my)
		sxx += dx * dx
	}

	if sxx < epsVariance {
		return 0, 0, ErrIllConditioned
	}

	beta = sxy / sxx
	alpha = my - beta*mx
	return alpha, beta, nil
}

// OLSResult - результат многомерной регрессии
type OLSResult struct {
	Coef   []float64 // оценки коэффициентов
	StdErr []float64 // стандартные ошибки коэффициентов
	RSS    float64   // сумма квадратов остатков
	N      int       // количество наблюдений
	K      int       // количество регрессоров (включая константу)
}

// OLS оценивает y = X·b + ε через нормальные уравнения.
// X - design matrix (каждая строка - наблюдение, первый столбец обычно 1).
// Нужна для ADF-регрессии и ограниченных/полных моделей теста Грейнджера.
func OLS(y []float64, X [][]float64) (*OLSResult, error) {
	n := len(y)
	if n == 0 || len(X) != n {
		return nil, ErrInsufficientData
	}
	k := len(X[0])
	if n <= k {
		return nil, ErrInsufficientData
	}

	// X'X и X'y
	xtx := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		xtx[i] = make([]float64, k)
	}
	for r := 0; r < n; r++ {
		row := X[r]
		if len(row) != k {
			return nil, ErrInsufficientData
		}
		for i := 0; i < k; i++ {
			if math.IsNaN(row[i]) || math.IsInf(row[i], 0) {
				return nil, ErrNonFinite
			}
			xty[i] += row[i] * y[r]
			for j := i; j < k; j++ {
				xtx[i][j] += row[i] * row[j]
			}
		}
		if math.IsNaN(y[r]) || math.IsInf(y[r], 0) {
			return nil, ErrNonFinite
		}
	}
	// Симметричное дозаполнение нижнего треугольника
	for i := 0; i < k; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	inv, err := invertSym(xtx)
	if err != nil {
		return nil, err
	}

	coef := make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			coef[i] += inv[i][j] * xty[j]
		}
	}

	// Остатки и RSS
	var rss float64
	for r := 0; r < n; r++ {
		pred := 0.0
		for i := 0; i < k; i++ {
			pred += X[r][i] * coef[i]
		}
		d := y[r] - pred
		rss += d * d
	}

	sigma2 := rss / float64(n-k)
	stderr := make([]float64, k)
	for i := 0; i < k; i++ {
		v := sigma2 * inv[i][i]
		if v < 0 {
			v = 0
		}
		stderr[i] = math.Sqrt(v)
	}

	return &OLSResult{Coef: coef, StdErr: stderr, RSS: rss, N: n, K: k}, nil
}

// invertSym обращает симметричную матрицу методом Гаусса-Жордана
// с частичным выбором ведущего элемента. Маленькие k (≤ ~20),
// поэтому O(k³) не проблема.
func invertSym(m [][]float64) ([][]float64, error) {
	k := len(m)
	a := make([][]float64, k)
	inv := make([][]float64, k)
	for i := 0; i < k; i++ {
		a[i] = make([]float64, k)
		copy(a[i], m[i])
		inv[i] = make([]float64, k)
		inv[i][i] = 1
	}

	for col := 0; col < k; col++ {
		// Поиск ведущего элемента
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, ErrIllConditioned
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		p := a[col][col]
		for j := 0; j < k; j++ {
			a[col][j] /= p
			inv[col][j] /= p
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < k; j++ {
				a[r][j] -= f * a[col][j]
				inv[r][j] -= f * inv[col][j]
			}
		}
	}

	return inv, nil
}
