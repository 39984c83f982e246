package permission

import (
	"taskzone/internal/common"
	"taskzone/internal/domain/model"
)

// Operation names a gated action on a single task.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// CanRead: any authenticated principal may read a single task. List scoping
// for regular users is a query concern handled by the task service.
func CanRead(_ *model.Task, _ model.Principal) bool {
	return true
}

// CanUpdate: the owner or any collaborator.
func CanUpdate(task *model.Task, p model.Principal) bool {
	return task.IsOwner(p.UserID) || task.IsCollaborator(p.UserID)
}

// CanDelete: admins or the owner. Collaborators may never delete.
func CanDelete(task *model.Task, p model.Principal) bool {
	return p.IsAdmin() || task.IsOwner(p.UserID)
}

// Check evaluates op against the task for the principal and returns
// common.ErrForbidden when the operation is not allowed.
func Check(task *model.Task, p model.Principal, op Operation) error {
	var allowed bool
	switch op {
	case OpRead:
		allowed = CanRead(task, p)
	case OpUpdate:
		allowed = CanUpdate(task, p)
	case OpDelete:
		allowed = CanDelete(task, p)
	}
	if !allowed {
		return common.ErrForbidden
	}
	return nil
}
