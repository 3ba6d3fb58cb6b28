package booking

// CanAccess reports whether actorID may read or change b: the owner always
// can, and so can any admin.
func CanAccess(b *Booking, actorID string, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	return actorID != "" && actorID == b.UserID
}
