package relay

import "endfind/estimator"

// Kind classifies a Result so targets can subscribe to part of the stream.
type Kind uint8

const (
	KindPrediction Kind = 1 << iota
	KindStatus

	KindAll = KindPrediction | KindStatus
)

// Result is one session outcome to forward.
type Result struct {
	Count      int
	Status     string
	OK         bool
	Prediction estimator.Prediction
}

func (r Result) Kind() Kind {
	if r.OK {
		return KindPrediction
	}
	return KindStatus
}

// Line renders r as a single CRLF terminated line, prefixed with "header:"
// when header is set.
func (r Result) Line(header string) []byte {
	var body []byte
	if r.OK {
		body = FormatPrediction(r.Count, r.Prediction)
	} else {
		body = FormatStatus(r.Count, r.Status)
	}
	if header == "" {
		return body
	}
	return append([]byte(header+":"), body...)
}
