package models

// Category ids come from the external feed and are stored verbatim,
// so the primary key is the external identifier rather than a surrogate.
type Category struct {
	CategoryID   string `gorm:"column:category_id;primaryKey;type:text"`
	CategoryName string `gorm:"column:category_name;type:text;not null"`
}

func (Category) TableName() string {
	return "categories"
}
