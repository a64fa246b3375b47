package authz

import "github.com/google/uuid"

// Membership tests are linear scans over the id sets loaded with the
// course. The sets are tens of users, not millions; no secondary index.

func (r *Resolved) IsInstructorOf(userID uuid.UUID) bool {
	if r == nil || r.Course == nil {
		return false
	}
	for _, u := range r.Course.Instructors {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

func (r *Resolved) IsStudentOf(userID uuid.UUID) bool {
	if r == nil || r.Course == nil {
		return false
	}
	for _, u := range r.Course.Students {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}
