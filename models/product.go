package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategoryGrains     Category = "grains"
	CategoryDairy      Category = "dairy"
	CategoryMeat       Category = "meat"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryVegetables, CategoryFruits, CategoryGrains, CategoryDairy, CategoryMeat, CategoryOther:
		return true
	}
	return false
}

type Unit string

const (
	UnitKg     Unit = "kg"
	UnitG      Unit = "g"
	UnitPieces Unit = "pieces"
	UnitLiters Unit = "liters"
	UnitDozen  Unit = "dozen"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitG, UnitPieces, UnitLiters, UnitDozen:
		return true
	}
	return false
}

// Product is a catalog entry owned by a single farmer. Quantity only moves
// through order placement and cancellation; the farmer reference never
// changes after creation.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Category    Category           `bson:"category" json:"category"`
	Unit        Unit               `bson:"unit" json:"unit"`
	Image       string             `bson:"image" json:"image"`
	Farmer      primitive.ObjectID `bson:"farmer" json:"farmer"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
	IsBlocked   bool               `bson:"isBlocked" json:"isBlocked"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Purchasable reports whether buyers may see or order this product,
// regardless of remaining quantity.
func (p *Product) Purchasable() bool {
	return p.IsAvailable && !p.IsBlocked
}
