package services

// IsAdmin reports whether the identity belongs to the privileged group.
func IsAdmin(identity *Identity, adminGroup string) bool {
	if identity == nil {
		return false
	}
	for _, g := range identity.Groups {
		if g == adminGroup {
			return true
		}
	}
	return false
}

// IsOwner reports whether the identity owns the resource with the given
// owner id.
func IsOwner(identity *Identity, ownerID string) bool {
	return identity != nil && identity.ID != "" && identity.ID == ownerID
}
