package specification

import (
	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByInviteeID struct {
	InviteeID uuid.UUID
}

func (s ByInviteeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("invitee_id = ?", s.InviteeID)
}

type ByInviterID struct {
	InviterID uuid.UUID
}

func (s ByInviterID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("inviter_id = ?", s.InviterID)
}
