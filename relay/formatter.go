package relay

import (
	"fmt"

	"endfind/estimator"
)

// FormatPrediction renders one prediction line:
//
//	prediction,<observations>,<x>,<z>,<confidence %>\r\n
func FormatPrediction(count int, p estimator.Prediction) []byte {
	return []byte(fmt.Sprintf("prediction,%d,%.1f,%.1f,%d\r\n", count, p.X, p.Z, p.Percent()))
}

// FormatStatus renders a status line for sessions without a prediction.
func FormatStatus(count int, status string) []byte {
	return []byte(fmt.Sprintf("status,%d,%s\r\n", count, status))
}
