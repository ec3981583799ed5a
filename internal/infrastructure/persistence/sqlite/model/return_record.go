package model

type ReturnRecord struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID      uint64  `gorm:"column:order_id;not null;uniqueIndex:ux_returns_order_id"`
	Product      string  `gorm:"column:product;type:text;not null"`
	StoreName    string  `gorm:"column:store_name;type:text;not null"`
	Category     string  `gorm:"column:category;type:text;not null"`
	Cost         float64 `gorm:"column:cost;type:real;not null"`
	ReturnReason string  `gorm:"column:return_reason;type:text;not null"`
	ApprovedFlag string  `gorm:"column:approved_flag;type:text;not null"`
	Origin       string  `gorm:"column:origin;type:text;not null"`
	CreatedAt    string  `gorm:"column:created_at;type:text;not null"`
}

func (ReturnRecord) TableName() string {
	return "returns"
}
