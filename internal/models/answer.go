package models

// Answer outcomes.
const (
	ResultPass    = "pass"
	ResultWarning = "warning"
	ResultFail    = "fail"
)

// Answer is the canonical shape of one submitted form answer.
type Answer struct {
	ID     string      `json:"id"`
	Label  string      `json:"label"`
	Value  interface{} `json:"value"`
	Result string      `json:"result"`
}

// ValidResult reports whether s is one of the three answer outcomes.
func ValidResult(s string) bool {
	return s == ResultPass || s == ResultWarning || s == ResultFail
}
