package models

// Subcategory rows include one synthetic "NONE-<categoryId>" entry per
// category for transactions that do not specify a subcategory.
type Subcategory struct {
	SubcategoryID   string    `gorm:"column:sub_category_id;primaryKey;type:text"`
	CategoryID      string    `gorm:"column:category_id;type:text;not null;index:subcategories_category_id_idx"`
	SubcategoryName string    `gorm:"column:sub_category_name;type:text;not null"`
	Category        *Category `gorm:"foreignKey:CategoryID;references:CategoryID"`
}

func (Subcategory) TableName() string {
	return "subcategories"
}
