// Package label derives the forward-return trading target for hourly rows.
//
// The label at row i looks exactly 3 bars ahead: return = (close[i+3] -
// close[i]) / close[i], classified CALL above +0.4%, PUT below -0.4%, and
// SIDEWAYS in between. The last 3 rows of any series have no future bar yet
// and stay unlabeled. Because earlier rows' futures come into existence as
// the series grows, the generator must be re-run over the whole table on
// every cycle.
package label

import "niftydata/internal/model"

const (
	// Horizon is how many bars ahead the future close is taken from.
	Horizon = 3

	// Threshold is the absolute return beyond which a move is directional.
	Threshold = 0.004
)

// Classify maps a relative forward return to its label.
func Classify(ret float64) string {
	switch {
	case ret > Threshold:
		return model.LabelCall
	case ret < -Threshold:
		return model.LabelPut
	}
	return model.LabelSideways
}

// Generate returns one label per close, "" where no future bar exists.
func Generate(closes []float64) []string {
	out := make([]string, len(closes))
	for i := 0; i+Horizon < len(closes); i++ {
		if closes[i] == 0 {
			continue
		}
		ret := (closes[i+Horizon] - closes[i]) / closes[i]
		out[i] = Classify(ret)
	}
	return out
}

// Apply stamps labels onto hourly rows in place. Rows must be ascending.
func Apply(rows []model.HourlyRow) {
	closes := make([]float64, len(rows))
	for i := range rows {
		closes[i] = rows[i].Close
	}
	labels := Generate(closes)
	for i := range rows {
		rows[i].Target = labels[i]
	}
}
