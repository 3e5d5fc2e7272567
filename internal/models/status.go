package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Status is the urgency tier of a service.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// Tier orders statuses from most to least urgent: danger=0, warning=1, ok=2.
func (s Status) Tier() int {
	switch s {
	case StatusDanger:
		return 0
	case StatusWarning:
		return 1
	default:
		return 2
	}
}

// Remaining is an optional signed count (days or kilometers) left until a
// service is due. The zero value is NotApplicable.
type Remaining struct {
	value int
	set   bool
}

// NotApplicable is a Remaining with no trigger configured.
var NotApplicable = Remaining{}

// RemainingOf returns a Remaining holding n.
func RemainingOf(n int) Remaining {
	return Remaining{value: n, set: true}
}

// Get returns the value and whether it is set.
func (r Remaining) Get() (int, bool) {
	return r.value, r.set
}

// IsSet reports whether a value is present.
func (r Remaining) IsSet() bool {
	return r.set
}

// Below reports whether the value is set and strictly less than n.
func (r Remaining) Below(n int) bool {
	return r.set && r.value < n
}

// AtMost reports whether the value is set and less than or equal to n.
func (r Remaining) AtMost(n int) bool {
	return r.set && r.value <= n
}

// Less orders two values with NotApplicable sorting after every set value.
func (r Remaining) Less(o Remaining) bool {
	switch {
	case !r.set:
		return false
	case !o.set:
		return true
	default:
		return r.value < o.value
	}
}

func (r Remaining) String() string {
	if !r.set {
		return "n/a"
	}
	return strconv.Itoa(r.value)
}

// MarshalJSON encodes a set value as a number and NotApplicable as null.
func (r Remaining) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.value)), nil
}

// UnmarshalJSON accepts a number or null.
func (r *Remaining) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = NotApplicable
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = RemainingOf(n)
	return nil
}

// ServiceStatus is the derived due state of one service definition. It is
// recomputed on every input change and never persisted.
type ServiceStatus struct {
	ServiceID             string     `json:"serviceId"`
	Name                  string     `json:"name"`
	LastPerformedDate     *time.Time `json:"lastPerformedDate"`
	LastPerformedOdometer *int       `json:"lastPerformedOdometer"` // nil when never performed
	NextDueDate           *time.Time `json:"nextDueDate"`
	NextDueOdometer       *int       `json:"nextDueOdometer"`
	Status                Status     `json:"status"`
	DaysLeft              Remaining  `json:"daysLeft"`
	KmLeft                Remaining  `json:"kmLeft"` // negative when overdue
}
