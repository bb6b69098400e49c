package model

// The remote task "qty" field is overloaded: values below 60 are a volunteer
// capacity, values of 60 and above are a shift duration in minutes. Quantity
// pins that decision to one place so no caller ever guesses.

// DefaultDurationMinutes is the assignment length used when a task quantity
// does not carry an explicit duration.
const DefaultDurationMinutes = 240

// DefaultTaskCapacity is the capacity reported for duration-carrying tasks.
const DefaultTaskCapacity = 1

// durationThreshold separates capacity quantities from duration quantities.
const durationThreshold = 60

// Quantity is the raw qty value of a remote task.
type Quantity int

// QuantityKind names the single meaning a Quantity value carries.
type QuantityKind int

const (
	// KindCapacity means the value counts wanted volunteers.
	KindCapacity QuantityKind = iota
	// KindDuration means the value is a shift length in minutes.
	KindDuration
)

// Kind reports which of the two meanings this quantity has.
func (q Quantity) Kind() QuantityKind {
	if q >= durationThreshold {
		return KindDuration
	}
	return KindCapacity
}

// DurationMinutes returns the shift length encoded in q, or the default when
// q is a capacity value.
func (q Quantity) DurationMinutes() int {
	if q.Kind() == KindDuration {
		return int(q)
	}
	return DefaultDurationMinutes
}

// Capacity returns the volunteer capacity encoded in q, or the default when
// q is a duration value.
func (q Quantity) Capacity() int {
	if q.Kind() == KindCapacity {
		return int(q)
	}
	return DefaultTaskCapacity
}
