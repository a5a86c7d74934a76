package schema

import "backoffice-service/internal/models"

// Entity kinds of the marketplace domain
const (
	KindUser              = "User"
	KindShop              = "Shop"
	KindCategory          = "Category"
	KindProduct           = "Product"
	KindProductInfo       = "ProductInfo"
	KindParameter         = "Parameter"
	KindProductParameter  = "ProductParameter"
	KindContact           = "Contact"
	KindOrder             = "Order"
	KindOrderItem         = "OrderItem"
	KindConfirmEmailToken = "ConfirmEmailToken"
)

func fk(field, target string) Relation {
	return Relation{Field: field, Column: field + "_id", Target: target}
}

func relations(rels ...Relation) map[string]Relation {
	m := make(map[string]Relation, len(rels))
	for _, r := range rels {
		m[r.Field] = r
	}
	return m
}

// Marketplace returns the registry of every importable kind
func Marketplace() *Registry {
	return NewRegistry(
		&Schema{
			Kind: KindUser,
			Fields: []string{
				"email", "password", "username", "first_name", "last_name", "company", "position",
				"type", "is_active", "is_staff", "is_superuser", "date_joined", "last_login",
			},
			Defaults: map[string]any{"type": string(models.UserTypeBuyer), "is_active": true},
			New:      func() any { return &models.User{} },
		},
		&Schema{
			Kind:      KindShop,
			Fields:    []string{"name", "url", "state"},
			Relations: relations(fk("user", KindUser)),
			Defaults:  map[string]any{"state": true},
			New:       func() any { return &models.Shop{} },
		},
		&Schema{
			Kind:      KindCategory,
			Fields:    []string{"name"},
			Relations: relations(Relation{Field: "shops", Target: KindShop, Many: true}),
			New:       func() any { return &models.Category{} },
		},
		&Schema{
			Kind:      KindProduct,
			Fields:    []string{"name"},
			Relations: relations(fk("category", KindCategory)),
			New:       func() any { return &models.Product{} },
		},
		&Schema{
			Kind:      KindProductInfo,
			Fields:    []string{"model", "external_id", "quantity", "price", "price_rrc"},
			Relations: relations(fk("product", KindProduct), fk("shop", KindShop)),
			New:       func() any { return &models.ProductInfo{} },
		},
		&Schema{
			Kind:   KindParameter,
			Fields: []string{"name"},
			New:    func() any { return &models.Parameter{} },
		},
		&Schema{
			Kind:      KindProductParameter,
			Fields:    []string{"value"},
			Relations: relations(fk("product_info", KindProductInfo), fk("parameter", KindParameter)),
			New:       func() any { return &models.ProductParameter{} },
		},
		&Schema{
			Kind:      KindContact,
			Fields:    []string{"city", "street", "house", "structure", "building", "apartment", "phone"},
			Relations: relations(fk("user", KindUser)),
			New:       func() any { return &models.Contact{} },
		},
		&Schema{
			Kind:      KindOrder,
			Fields:    []string{"dt", "state"},
			Relations: relations(fk("user", KindUser), fk("contact", KindContact)),
			New:       func() any { return &models.Order{} },
		},
		&Schema{
			Kind:      KindOrderItem,
			Fields:    []string{"quantity"},
			Relations: relations(fk("order", KindOrder), fk("product_info", KindProductInfo)),
			New:       func() any { return &models.OrderItem{} },
		},
		&Schema{
			Kind:      KindConfirmEmailToken,
			Fields:    []string{"key", "created_at"},
			Relations: relations(fk("user", KindUser)),
			New:       func() any { return &models.ConfirmEmailToken{} },
		},
	)
}
