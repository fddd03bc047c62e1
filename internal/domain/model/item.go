package model

import "time"

// 商品 (admin only create/update/delete)
type Item struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Content   string    `gorm:"type:text" json:"content"`
	Price     int64     `gorm:"not null" json:"price"`
	Image     string    `gorm:"type:varchar(512)" json:"image"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
