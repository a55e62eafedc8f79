package clustering

import "math"

// vstTheta is the negative-binomial overdispersion used by the
// variance-stabilizing transform.
const vstTheta = 100.0

// PearsonResiduals replaces raw counts (cells x genes, in place) with
// Pearson residuals under a negative-binomial null whose expectation is
// proportional to library size and gene abundance. Residuals are clipped
// to +/- sqrt(n cells); genes never observed become 0.
func PearsonResiduals(rows [][]float64) {
	n := len(rows)
	if n == 0 {
		return
	}
	d := len(rows[0])

	cellTotals := make([]float64, n)
	geneTotals := make([]float64, d)
	grand := 0.0
	for i, row := range rows {
		for j, v := range row {
			cellTotals[i] += v
			geneTotals[j] += v
		}
		grand += cellTotals[i]
	}
	if grand == 0 {
		return
	}

	clip := math.Sqrt(float64(n))
	for i, row := range rows {
		for j, v := range row {
			mu := cellTotals[i] * geneTotals[j] / grand
			if mu == 0 {
				row[j] = 0
				continue
			}
			sigma := math.Sqrt(mu + mu*mu/vstTheta)
			r := (v - mu) / sigma
			if r > clip {
				r = clip
			} else if r < -clip {
				r = -clip
			}
			row[j] = r
		}
	}
}
