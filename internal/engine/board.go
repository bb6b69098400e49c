package engine

import (
	"strings"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// SetBoardMembers seeds the board-member registry used for role inference.
// Assignments loaded before the registry arrived are retagged, and a render
// pass is triggered when any role changed.
func (e *Engine) SetBoardMembers(members []api.Volunteer) {
	for _, m := range members {
		if name := strings.TrimSpace(m.Name); name != "" {
			e.boardNames[name] = struct{}{}
		}
		if m.ID != 0 {
			e.boardIDs[m.ID] = struct{}{}
		}
	}
	appLog.Info("board registry updated", "names", len(e.boardNames), "ids", len(e.boardIDs))

	if e.retagBoardAssignments() {
		e.Render()
	}
}

// inferRole decides an assignment's role from the board registry: a known
// user id wins, then an exact name match; everything else is a volunteer.
func (e *Engine) inferRole(userID int64, name string) model.Role {
	if userID != 0 {
		if _, ok := e.boardIDs[userID]; ok {
			return model.RoleBoard
		}
	}
	if name = strings.TrimSpace(name); name != "" {
		if _, ok := e.boardNames[name]; ok {
			return model.RoleBoard
		}
	}
	return model.RoleVolunteer
}

// retagBoardAssignments re-applies board-role inference to all current
// assignments and reports whether any role changed.
func (e *Engine) retagBoardAssignments() bool {
	changed := false
	for _, a := range e.assignments {
		if a.Role == model.RoleBoard {
			continue
		}
		if e.inferRole(a.UserID, a.Title) == model.RoleBoard {
			a.Role = model.RoleBoard
			changed = true
		}
	}
	return changed
}
