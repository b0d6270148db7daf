package marketdata

import (
	"statarb/internal/models"
)

// lastClosesChecked - сколько последних закрытий проверяется фильтром цены
const lastClosesChecked = 10

// HygieneReport - результат фильтрации вселенной
type HygieneReport struct {
	Kept            []models.Ticker
	DroppedByPrice  []models.Ticker
	DroppedByLength []models.Ticker
}

// FilterUniverse применяет гигиену вселенной к снапшоту:
// убирает тикеры с историей короче minHistory и тикеры, у которых
// среди последних 10 закрытий встречается цена ниже minPrice
// (дешёвые бумаги дают шумные спреды и нерепрезентативные beta).
//
// Снапшот мутируется на месте; отчёт возвращается для журнала прогона.
func FilterUniverse(snap Snapshot, minHistory int, minPrice float64) HygieneReport {
	var report HygieneReport

	for ticker, series := range snap {
		if series.Len() < minHistory {
			delete(snap, ticker)
			report.DroppedByLength = append(report.DroppedByLength, ticker)
			continue
		}

		if minPrice > 0 && hasCheapClose(series, minPrice) {
			delete(snap, ticker)
			report.DroppedByPrice = append(report.DroppedByPrice, ticker)
			continue
		}

		report.Kept = append(report.Kept, ticker)
	}

	return report
}

// hasCheapClose проверяет последние закрытия на пробой ценового минимума
func hasCheapClose(series *models.PriceSeries, minPrice float64) bool {
	n := series.Len()
	start := n - lastClosesChecked
	if start < 0 {
		start = 0
	}
	for _, p := range series.Points[start:] {
		if p.Price < minPrice {
			return true
		}
	}
	return false
}
