package specification

import (
	"gorm.io/gorm"
)

type ByCode struct {
	Code string
}

func (s ByCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("code = ?", s.Code)
}

type ByBatchNo struct {
	BatchNo string
}

func (s ByBatchNo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("batch_no = ?", s.BatchNo)
}

type UnredeemedOnly struct{}

func (s UnredeemedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("used_at IS NULL")
}
