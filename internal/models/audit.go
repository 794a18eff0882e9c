package models

import (
	"time"
)

// ActivityAction represents the type of logged activity
type ActivityAction string

const (
	ActivityActionCreate  ActivityAction = "create"
	ActivityActionUpdate  ActivityAction = "update"
	ActivityActionDelete  ActivityAction = "delete"
	ActivityActionBackup  ActivityAction = "backup"
	ActivityActionRestore ActivityAction = "restore"
	ActivityActionUpload  ActivityAction = "upload"
)

// ActivityLog records an administrative action for the audit trail
type ActivityLog struct {
	ID          uint           `gorm:"column:id;primaryKey" json:"id"`
	Action      ActivityAction `gorm:"column:action;size:50;not null;index" json:"action"`
	EntityType  string         `gorm:"column:entity_type;size:50;index" json:"entity_type"` // customer, package, backup, settings, ...
	EntityID    uint           `gorm:"column:entity_id;index" json:"entity_id"`
	EntityName  string         `gorm:"column:entity_name;size:100" json:"entity_name"`
	Description string         `gorm:"column:description;size:500" json:"description"`
	IPAddress   string         `gorm:"column:ip_address;size:50" json:"ip_address"`
	CreatedAt   time.Time      `gorm:"column:created_at;index" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
