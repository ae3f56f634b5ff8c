// Package policy holds every authorization and task-state rule in one
// place. Handlers collect the caller identity and the current task row,
// ask the policy, and translate its verdict into an HTTP response; no
// role or status check lives anywhere else.
package policy

import "errors"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleRegular Role = "REGULAR"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "INPROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

var (
	ErrNotAssignee      = errors.New("caller is not the task assignee")
	ErrAssignForbidden  = errors.New("caller role may not assign tasks")
	ErrAssigneeAdmin    = errors.New("cannot assign task to an admin")
	ErrAssigneeManager  = errors.New("cannot assign task to a manager")
	ErrTaskCompleted    = errors.New("cannot assign a completed task")
	ErrAlreadyAssigned  = errors.New("task is already assigned")
	ErrRoleUpdateDenied = errors.New("caller role may not update user roles")
)

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID   int
	Role Role
}

// TaskView is the slice of task state the policy needs.
type TaskView struct {
	Status     Status
	AssignedTo *int
}

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleManager, RoleRegular:
		return true
	default:
		return false
	}
}

func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanModifyTask gates status updates and deletion. ADMIN and MANAGER may
// touch any task; a REGULAR caller only the task currently assigned to
// them. An unassigned task is therefore off limits to REGULAR callers.
func CanModifyTask(caller Caller, task TaskView) error {
	if caller.Role != RoleRegular {
		return nil
	}
	if task.AssignedTo == nil || *task.AssignedTo != caller.ID {
		return ErrNotAssignee
	}
	return nil
}

// CanAssignTask gates the assign operation itself: dispatching work is a
// MANAGER/ADMIN privilege.
func CanAssignTask(caller Caller) error {
	if caller.Role == RoleRegular {
		return ErrAssignForbidden
	}
	return nil
}

// CheckAssignment validates a concrete assignment once the caller is
// allowed to assign at all. Only REGULAR users can be assignees, a
// COMPLETED task is closed to assignment, and assignment is one-shot.
// The check order matches the error precedence callers observe.
func CheckAssignment(task TaskView, assigneeRole Role) error {
	if assigneeRole == RoleAdmin {
		return ErrAssigneeAdmin
	}
	if task.Status == StatusCompleted {
		return ErrTaskCompleted
	}
	if assigneeRole == RoleManager {
		return ErrAssigneeManager
	}
	if task.AssignedTo != nil {
		return ErrAlreadyAssigned
	}
	return nil
}

// CanUpdateRole gates the role-update operation: ADMIN only.
func CanUpdateRole(caller Caller) error {
	if caller.Role != RoleAdmin {
		return ErrRoleUpdateDenied
	}
	return nil
}
