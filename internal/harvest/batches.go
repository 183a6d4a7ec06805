package harvest

import "fmt"

// AllBatches enumerates every cohort code from 2005 through 2025: the winter
// and summer intakes for each year, the one-off F24 fall intake, and the
// spring (X) plus fall (F) expansion codes from 2025 on.
func AllBatches() []Batch {
	var batches []Batch
	for year := 5; year <= 25; year++ {
		batches = append(batches,
			Batch(fmt.Sprintf("W%02d", year)),
			Batch(fmt.Sprintf("S%02d", year)),
		)
		switch {
		case year == 24:
			batches = append(batches, "F24")
		case year >= 25:
			batches = append(batches,
				Batch(fmt.Sprintf("X%02d", year)),
				Batch(fmt.Sprintf("F%02d", year)),
			)
		}
	}
	return batches
}
