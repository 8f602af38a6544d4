package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Providers disagree on whether ids, scores and odds arrive as strings or
// numbers, and flip between them without notice. These wrappers absorb both
// shapes so a payload drift degrades a field instead of failing the poll.

type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*s = flexString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	return fmt.Errorf("feed: invalid string: %s", string(b))
}

func (s flexString) String() string { return string(s) }

// flexFloat reads a JSON number or a numeric string. Blank and unparseable
// strings decode to zero, which downstream treats as "no value".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" || str == "-" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	return fmt.Errorf("feed: invalid number: %s", string(b))
}
