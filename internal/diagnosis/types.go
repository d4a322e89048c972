package diagnosis

import "encoding/json"

// ErrorType names why a recognized word differs from the expected one.
// The empty ErrorType stands for "no error type": either the words match
// or one side was empty.
type ErrorType string

const (
	ErrorMissingEnding ErrorType = "missing_ending"
	ErrorExtraEnding   ErrorType = "extra_ending"
	ErrorNearMatch     ErrorType = "near_match"
	ErrorVowelSwap     ErrorType = "vowel_swap"
	ErrorClusterIssue  ErrorType = "cluster_issue"
	ErrorOther         ErrorType = "other"
)

// ErrorTypes lists every error type in rule priority order.
var ErrorTypes = []ErrorType{
	ErrorMissingEnding,
	ErrorExtraEnding,
	ErrorNearMatch,
	ErrorVowelSwap,
	ErrorClusterIssue,
	ErrorOther,
}

// MarshalJSON encodes the empty ErrorType as null.
func (e ErrorType) MarshalJSON() ([]byte, error) {
	if e == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(e))
}

// UnmarshalJSON decodes null as the empty ErrorType.
func (e *ErrorType) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*e = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*e = ErrorType(s)
	return nil
}

// Result is the diagnosis of one spoken word.
type Result struct {
	Correct       bool      `json:"correct"`
	ErrorType     ErrorType `json:"error_type"`
	MessageShort  string    `json:"message_short"`
	MessageDetail string    `json:"message_detail"`
}

// IsNeutral reports whether r is the result for empty input.
func (r Result) IsNeutral() bool {
	return r == Result{}
}
