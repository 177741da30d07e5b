package performance

import (
	"fmt"
	"time"

	"github.com/aristath/sentinel-quant/internal/domain"
)

// PeriodReturn is the compounded return over one calendar period.
type PeriodReturn struct {
	Period       string  `json:"period"`
	Return       float64 `json:"return"`
	Observations int     `json:"observations"`
}

// PeriodReturns compounds returns within each weekly, monthly or annual bucket.
// Labels are 2024-W05, 2024-01 and 2024; daily input yields one bucket per date.
func PeriodReturns(returns domain.ReturnSeries, period domain.Period) []PeriodReturn {
	out := []PeriodReturn{}
	for i, d := range returns.Dates {
		label := periodLabel(d, period)
		if n := len(out); n > 0 && out[n-1].Period == label {
			out[n-1].Return = (1+out[n-1].Return)*(1+returns.Values[i]) - 1
			out[n-1].Observations++
			continue
		}
		out = append(out, PeriodReturn{Period: label, Return: returns.Values[i], Observations: 1})
	}
	return out
}

func periodLabel(d time.Time, period domain.Period) string {
	switch period {
	case domain.PeriodWeekly:
		y, w := d.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case domain.PeriodMonthly:
		return d.Format("2006-01")
	case domain.PeriodAnnual:
		return d.Format("2006")
	default:
		return d.Format(domain.DateLayout)
	}
}
