package api

import "encoding/json"

// Wire types for the sign-up-sheets REST surface. The backend is not fully
// consistent about envelopes and field casing, so decoding is deliberately
// tolerant: list responses may be bare arrays or wrapped objects, and signup
// name fields arrive in three spellings.

// Schedule is the remote per-day container ("sheet"). Exactly one exists per
// calendar day.
type Schedule struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Task is the remote per-shift entity on a schedule. Qty is dual-purpose;
// see model.Quantity.
type Task struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Qty   int    `json:"qty"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// Signup is the remote per-volunteer entity on a task.
type Signup struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	UserID    int64
}

// UnmarshalJSON accepts the three name spellings the backend has produced
// over time (firstName / firstname / first_name, same for the last name and
// userId / user_id).
func (s *Signup) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int64  `json:"id"`
		FirstName string `json:"firstName"`
		FirstLC   string `json:"firstname"`
		FirstSC   string `json:"first_name"`
		LastName  string `json:"lastName"`
		LastLC    string `json:"lastname"`
		LastSC    string `json:"last_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		UserID    int64  `json:"userId"`
		UserSC    int64  `json:"user_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.ID = raw.ID
	s.Email = raw.Email
	s.Phone = raw.Phone

	s.FirstName = firstNonEmpty(raw.FirstName, raw.FirstLC, raw.FirstSC)
	s.LastName = firstNonEmpty(raw.LastName, raw.LastLC, raw.LastSC)

	s.UserID = raw.UserID
	if s.UserID == 0 {
		s.UserID = raw.UserSC
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// NewSchedule is the create payload for a schedule.
type NewSchedule struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// NewTask is the create payload for a task.
type NewTask struct {
	Title string `json:"title"`
	Qty   int    `json:"qty"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// TaskUpdate is a partial task update; only non-nil fields are sent.
type TaskUpdate struct {
	Date *string `json:"date,omitempty"`
	Time *string `json:"time,omitempty"`
	Qty  *int    `json:"qty,omitempty"`
}

// NewSignup is the create payload for a signup. UserID is optional and links
// the signup to a directory user when known.
type NewSignup struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	UserID    *int64 `json:"userId,omitempty"`
}

// Volunteer is a directory entry from the volunteers endpoint.
type Volunteer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Team is a youth team from the directory.
type Team struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Player is a squad member of a youth team.
type Player struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
