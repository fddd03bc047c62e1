package validator

// POST /api/items
type CreateItemRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Price     *int64 `json:"price" validate:"required,gte=0"`
	Content   string `json:"content"`
	Base64    string `json:"base64" validate:"required"`
	Extension string `json:"extension" validate:"required,oneof=png jpg jpeg gif webp"`
}

// PUT /api/items/:id。省略したフィールドは変更しない
type UpdateItemRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	Price     *int64  `json:"price" validate:"omitempty,gte=0"`
	Content   *string `json:"content"`
	Base64    *string `json:"base64"`
	Extension *string `json:"extension" validate:"omitempty,oneof=png jpg jpeg gif webp"`
}

// POST /api/carts の配列の1要素
type CartIntentRequest struct {
	ItemID   *int64 `json:"item_id" validate:"required,gt=0"`
	Quantity *int64 `json:"quantity" validate:"required,gte=0"`
}
