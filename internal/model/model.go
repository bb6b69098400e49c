package model

import (
	"strings"
	"time"
)

// DefaultResource is the single calendar lane all duty slots live on.
const DefaultResource = "kantine"

// DefaultSlotCapacity is the number of volunteers wanted per derived shift.
const DefaultSlotCapacity = 5

// Role classifies who an assignment belongs to.
type Role string

const (
	RoleVolunteer Role = "vrijwilliger"
	RoleBoard     Role = "bestuur"
	RoleParent    Role = "parents"
)

// Fixture is a canonical match-fixture event produced by the feed parser,
// after the home-venue filter has been applied.
type Fixture struct {
	ID       string
	Title    string
	Start    time.Time
	End      time.Time
	Resource string
	Location string
}

// Slot is a locally rendered duty window. Derived slots are rebuilt from the
// fixture set on every render pass; manual slots (dropped into empty time or
// synthesized during month hydration) survive regeneration and re-attach
// their schedule id by day key.
type Slot struct {
	ID       string
	Start    time.Time
	End      time.Time
	Required int
	Resource string
	Manual   bool

	// Remote bindings, zero until resolved.
	SheetID int64
	TaskID  int64
}

// DayKey returns the calendar day the slot starts on.
func (s *Slot) DayKey() string {
	return DayKey(s.Start)
}

// TaskKey is the (date, time) identity a slot shares with its remote task.
func (s *Slot) TaskKey() string {
	return DayKey(s.Start) + " " + ClockKey(s.Start)
}

// Assignment binds one person to one slot. It is created Pending on a drop
// and confirmed once the remote task/signup ids resolve.
type Assignment struct {
	ID      string
	SlotID  string
	Title   string
	Role    Role
	Pending bool

	Start time.Time
	End   time.Time

	// Remote bindings, zero until confirmed.
	SheetID  int64
	TaskID   int64
	SignupID int64
	UserID   int64
}

// SplitName splits the assignment title into the first/last name pair sent
// to the signup endpoint. Everything after the first space is the last name.
func SplitName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}
