package blogservice

import "github.com/sushihentaime/bloglist/internal/userservice"

// CanMutate reports whether caller owns the record owned by ownerID.
// Identifiers are compared in their canonical text form.
func CanMutate(ownerID string, caller *userservice.Identity) bool {
	if caller == nil || caller.UserID == "" {
		return false
	}
	return canonicalID(caller.UserID) == canonicalID(ownerID)
}
