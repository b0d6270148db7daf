package stats

import "math"

// FSurvival возвращает P(F > f) для F-распределения с d1 и d2 степенями
// свободы. Используется для p-value теста Грейнджера.
//
// Через регуляризованную неполную бета-функцию:
//
//	P(F > f) = I_x(d2/2, d1/2), x = d2 / (d2 + d1·f)
func FSurvival(f float64, d1, d2 int) float64 {
	if f <= 0 {
		return 1
	}
	if d1 <= 0 || d2 <= 0 {
		return 1
	}
	x := float64(d2) / (float64(d2) + float64(d1)*f)
	return regIncBeta(float64(d2)/2, float64(d1)/2, x)
}

// regIncBeta - регуляризованная неполная бета-функция I_x(a,b).
// Разложение в непрерывную дробь по методу Lentz.
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lgA, _ := math.Lgamma(a)
	lgB, _ := math.Lgamma(b)
	lgAB, _ := math.Lgamma(a + b)
	front := math.Exp(lgAB - lgA - lgB + a*math.Log(x) + b*math.Log(1-x))

	// Симметрия для быстрой сходимости дроби
	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF - непрерывная дробь для неполной беты (modified Lentz)
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		tiny    = 1e-30
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		m2 := float64(2 * m)
		fm := float64(m)

		// Чётный шаг
		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		// Нечётный шаг
		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}

	return h
}
