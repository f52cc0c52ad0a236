package entity

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is the metering row written for every completed unit of work,
// whether or not points were charged for it. Admins and users rendering on
// their own provider key still produce usage rows.
type UsageRecord struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	Units             int64
	PointsCharged     int64
	UsedSystemCredits bool
	Description       string
	Metadata          map[string]interface{}
	CreatedAt         time.Time
}
