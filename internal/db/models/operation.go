package models

import (
	"time"

	"gorm.io/gorm"
)

// OperationCreatedAtField is the database field name for the operation creation timestamp
const OperationCreatedAtField = "created_at"

// Operation is one submitted or tracked server operation, as last observed by this machine
type Operation struct {
	gorm.Model
	UUID          string     `json:"uuid" gorm:"not null;uniqueIndex"`
	Kind          string     `json:"kind" gorm:"not null;index"`
	Name          string     `json:"name,omitempty"`
	BaseURL       string     `json:"base_url" gorm:"not null"`
	URL           string     `json:"url,omitempty" gorm:"type:text"`
	Status        string     `json:"status,omitempty" gorm:"index"`
	Terminal      bool       `json:"terminal" gorm:"not null;default:false"`
	Success       bool       `json:"success" gorm:"not null;default:false"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
}
