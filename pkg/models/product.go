package models

import (
	"time"
)

type Product struct {
	ID string `bson:"id" json:"id"`
	// ShopID is the owning shop and never changes after creation.
	ShopID      string   `bson:"shop_id" json:"shop_id"`
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description" json:"description"`
	Price       float64  `bson:"price" json:"price"`
	SalePrice   *float64 `bson:"sale_price,omitempty" json:"sale_price,omitempty"`
	Images      []string `bson:"images" json:"images"`
	Category    string   `bson:"category" json:"category"`
	// Inventory is the tracked stock count. Nil means availability is
	// unlimited and never decremented.
	Inventory   *int      `bson:"inventory,omitempty" json:"inventory,omitempty"`
	IsAvailable bool      `bson:"is_available" json:"is_available"`
	Tags        []string  `bson:"tags" json:"tags"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func (p *Product) TracksInventory() bool {
	return p.Inventory != nil
}

// EffectivePrice is the price charged at order time; the sale price wins when
// set.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}
