package invoice

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zombor/timesheet-invoicer/internal/pay"
)

// Field names accepted by TimeChanged and OtherChanged
const (
	FieldStart       = "start"
	FieldEnd         = "end"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldRate        = "rate"
)

// State is the editable part of an invoice session
type State struct {
	Shifts     []pay.Shift
	RoundHours bool
}

// Event is a single edit to the shift list
type Event interface {
	event()
}

// TimeChanged sets a start or end time and recomputes hours, overtime and amount
type TimeChanged struct {
	ShiftID string
	Field   string // FieldStart or FieldEnd
	Value   string
}

// HoursChanged overrides worked hours. Overtime and amount follow; the times
// are left as they were.
type HoursChanged struct {
	ShiftID string
	Hours   float64
}

// OvertimeChanged overrides overtime hours; only the amount follows
type OvertimeChanged struct {
	ShiftID       string
	OvertimeHours float64
}

// OtherChanged sets the description, date or displayed rate. Nothing is recomputed.
type OtherChanged struct {
	ShiftID string
	Field   string // FieldDescription, FieldDate or FieldRate
	Value   string
}

// RoundingPolicyChanged recomputes every shift from its times under the new
// policy. Manual hour and overtime overrides are lost.
type RoundingPolicyChanged struct {
	RoundHours bool
}

// ShiftAdded appends a shift
type ShiftAdded struct {
	Shift pay.Shift
}

// ShiftRemoved deletes a shift. The last remaining shift cannot be removed.
type ShiftRemoved struct {
	ShiftID string
}

func (TimeChanged) event()           {}
func (HoursChanged) event()          {}
func (OvertimeChanged) event()       {}
func (OtherChanged) event()          {}
func (RoundingPolicyChanged) event() {}
func (ShiftAdded) event()            {}
func (ShiftRemoved) event()          {}

// Reduce applies ev to state and returns the new state. The input state is
// never modified; on error it is returned unchanged.
func Reduce(calc *pay.Calculator, state State, ev Event) (State, error) {
	next := State{Shifts: slices.Clone(state.Shifts), RoundHours: state.RoundHours}

	switch e := ev.(type) {
	case TimeChanged:
		i, err := indexOf(next.Shifts, e.ShiftID)
		if err != nil {
			return state, err
		}
		s := next.Shifts[i]
		switch e.Field {
		case FieldStart:
			s.StartTime = strings.TrimSpace(e.Value)
		case FieldEnd:
			s.EndTime = strings.TrimSpace(e.Value)
		default:
			return state, fmt.Errorf("%w: %q", ErrUnknownField, e.Field)
		}
		next.Shifts[i] = calc.Recalculate(s, next.RoundHours)

	case HoursChanged:
		i, err := indexOf(next.Shifts, e.ShiftID)
		if err != nil {
			return state, err
		}
		if !finite(e.Hours) {
			return state, fmt.Errorf("%w: hours %v", ErrInvalidValue, e.Hours)
		}
		next.Shifts[i] = calc.WithHours(next.Shifts[i], e.Hours)

	case OvertimeChanged:
		i, err := indexOf(next.Shifts, e.ShiftID)
		if err != nil {
			return state, err
		}
		if !finite(e.OvertimeHours) || e.OvertimeHours < 0 {
			return state, fmt.Errorf("%w: overtime hours %v", ErrInvalidValue, e.OvertimeHours)
		}
		next.Shifts[i] = calc.WithOvertime(next.Shifts[i], e.OvertimeHours)

	case OtherChanged:
		i, err := indexOf(next.Shifts, e.ShiftID)
		if err != nil {
			return state, err
		}
		s := next.Shifts[i]
		switch e.Field {
		case FieldDescription:
			s.Description = e.Value
		case FieldDate:
			s.Date = strings.TrimSpace(e.Value)
		case FieldRate:
			rate, err := decimal.NewFromString(strings.TrimSpace(e.Value))
			if err != nil || rate.IsNegative() {
				return state, fmt.Errorf("%w: rate %q", ErrInvalidValue, e.Value)
			}
			s.Rate = rate
		default:
			return state, fmt.Errorf("%w: %q", ErrUnknownField, e.Field)
		}
		next.Shifts[i] = s

	case RoundingPolicyChanged:
		next.RoundHours = e.RoundHours
		for i, s := range next.Shifts {
			next.Shifts[i] = calc.Recalculate(s, e.RoundHours)
		}

	case ShiftAdded:
		if e.Shift.ID == "" {
			return state, fmt.Errorf("%w: shift has no id", ErrInvalidValue)
		}
		if _, err := indexOf(next.Shifts, e.Shift.ID); err == nil {
			return state, fmt.Errorf("%w: duplicate shift id %s", ErrInvalidValue, e.Shift.ID)
		}
		next.Shifts = append(next.Shifts, e.Shift)

	case ShiftRemoved:
		i, err := indexOf(next.Shifts, e.ShiftID)
		if err != nil {
			return state, err
		}
		if len(next.Shifts) == 1 {
			return state, ErrLastShift
		}
		next.Shifts = slices.Delete(next.Shifts, i, i+1)

	default:
		return state, fmt.Errorf("unsupported event %T", ev)
	}

	return next, nil
}

func indexOf(shifts []pay.Shift, id string) (int, error) {
	i := slices.IndexFunc(shifts, func(s pay.Shift) bool { return s.ID == id })
	if i == -1 {
		return -1, fmt.Errorf("%w: %s", ErrShiftNotFound, id)
	}
	return i, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
