package indicator

import "niftydata/internal/model"

// LinReg calculates a least-squares regression line over a rolling window and
// reports the fitted value at the window's last point (the "LSMA").
type LinReg struct {
	period  int
	buf     []float64
	idx     int
	count   int
	current float64
}

// NewLinReg creates a new least-squares moving average with the given period.
func NewLinReg(period int) *LinReg {
	return &LinReg{
		period: period,
		buf:    make([]float64, period),
	}
}

func (l *LinReg) Name() string { return "LSMA" }

func (l *LinReg) Update(bar model.Bar) {
	l.buf[l.idx] = bar.Close
	l.idx = (l.idx + 1) % l.period
	l.count++

	if l.count < l.period {
		return
	}

	// Window in chronological order: oldest value sits at idx after the
	// wrap-around write above.
	n := float64(l.period)
	var sumY, sumXY float64
	for i := 0; i < l.period; i++ {
		y := l.buf[(l.idx+i)%l.period]
		sumY += y
		sumXY += float64(i) * y
	}

	// x = 0..n-1: sumX = n(n-1)/2, sumX2 = n(n-1)(2n-1)/6
	sumX := n * (n - 1) / 2
	sumX2 := n * (n - 1) * (2*n - 1) / 6

	slope := (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept := (sumY - slope*sumX) / n
	l.current = intercept + slope*(n-1)
}

func (l *LinReg) Value() float64 { return l.current }
func (l *LinReg) Ready() bool    { return l.count >= l.period }
