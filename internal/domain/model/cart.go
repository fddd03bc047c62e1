package model

import "time"

// 1ユーザー1商品につき1行。
// quantity=0は削除の合図なので保存されない。
type Cart struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_carts_user_item" json:"user_id"`
	ItemID    int64     `gorm:"not null;uniqueIndex:idx_carts_user_item;index" json:"item_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Item      *Item     `gorm:"foreignKey:ItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"item,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
