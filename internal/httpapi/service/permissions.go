package service

import "yamdb/internal/httpapi/models"

// CanModify is the capability predicate for author-owned resources: the
// author, a moderator or an admin may mutate a review or comment. Review and
// comment services evaluate it uniformly for every mutating operation.
func CanModify(callerRole, callerID, authorID string) bool {
	if callerRole == models.RoleAdmin || callerRole == models.RoleModerator {
		return true
	}
	return callerID == authorID
}
