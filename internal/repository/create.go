package repository

import "gorm.io/gorm"

// createKeepingInactive 创建带 default:true 启用标记的记录，显式 false 时补写一次
func createKeepingInactive(db *gorm.DB, value interface{}, active bool, omit ...string) error {
	query := db
	if len(omit) > 0 {
		query = db.Omit(omit...)
	}
	if err := query.Create(value).Error; err != nil {
		return err
	}
	if active {
		return nil
	}
	return db.Model(value).UpdateColumn("is_active", false).Error
}
