package models

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&Category{},
		&Brand{},
		&Product{},
		&ProductCategory{},
		&ProductImage{},
		&Attribute{},
		&AttributeValue{},
		&ProductVariant{},
		&ProductVariantAttribute{},
		&Cart{},
		&CartItem{},
		&PaymentMethod{},
		&Order{},
		&OrderItem{},
		&QuickOrder{},
		&Payment{},
	}
}
