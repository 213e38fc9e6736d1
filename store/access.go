package store

// RequireOwner gates owner-restricted mutations. It is a pure equality check
// against an already-authenticated caller identity; there is no role or
// hierarchy concept.
func RequireOwner(ownerID, callerID uint) error {
	if callerID == 0 || ownerID != callerID {
		return ErrForbidden
	}
	return nil
}
