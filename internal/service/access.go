package service

import (
	"docuai/internal/models"

	"github.com/google/uuid"
)

// CanAccess is the single ownership rule for document reads and mutations:
// the owner or an administrator.
func CanAccess(ownerID, requesterID uuid.UUID, role models.Role) bool {
	return ownerID == requesterID || role == models.RoleAdmin
}

func canAccessDocument(doc *models.Document, user *models.User) bool {
	return doc != nil && user != nil && CanAccess(doc.UserID, user.ID, user.Role)
}
