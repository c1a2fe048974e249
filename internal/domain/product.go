package domain

import "time"

// ProductStatus is the lifecycle state the backend keeps for a product.
type ProductStatus string

// Product statuses accepted by the catalog.
const (
	StatusPending  ProductStatus = "pending"
	StatusReleased ProductStatus = "released"
	StatusInactive ProductStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReleased, StatusInactive:
		return true
	}
	return false
}

// MenuType is the product type whose specification rows carry kind/quantity/unit.
const MenuType = "menu"

// ProductDraft is the product record being assembled by a configuration session.
// Text fields hold raw form input; numbers are parsed when the payload is built.
type ProductDraft struct {
	Title          string `json:"title"`
	ProductType    string `json:"productType"`
	Classification string `json:"classification"`
	Category       string `json:"category"`

	PartnerID string `json:"idPartner"`
	PrinterID string `json:"idPrinter"`

	Measure  string `json:"measure"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Offer    string `json:"offer"`

	Description string `json:"description"`
	Image       string `json:"image"`

	// Canonical encodings of the attribute lists; nil means "not provided".
	Include   *string `json:"include"`
	Remove    *string `json:"remove"`
	Datasheet *string `json:"datasheet"`

	Status ProductStatus `json:"status"`
}

// NewProductDraft returns an empty draft with the default status.
func NewProductDraft() ProductDraft {
	return ProductDraft{Status: StatusPending}
}

// Encoding returns the stored canonical encoding for kind.
func (d *ProductDraft) Encoding(kind ListKind) *string {
	switch kind {
	case ListInclude:
		return d.Include
	case ListRemove:
		return d.Remove
	case ListDatasheet:
		return d.Datasheet
	}
	return nil
}

// IsMenu reports whether the draft currently describes a menu item.
func (d *ProductDraft) IsMenu() bool {
	return d.ProductType == MenuType
}

// ProductPayload is the body of POST /products.
// Nil pointers are sent as JSON null, which the backend reads as "omitted".
type ProductPayload struct {
	Title            string        `json:"title" validate:"required,notblank,min=6,max=100"`
	ProductType      string        `json:"productType" validate:"required,min=4,max=15"`
	CategoryID       int           `json:"idca" validate:"gt=0"`
	ClassificationID int           `json:"idcl" validate:"gt=0"`
	PartnerID        int           `json:"idPartner" validate:"gt=0"`
	PrinterID        *int          `json:"idPrinter" validate:"omitempty,gt=0"`
	Measure          string        `json:"measure" validate:"required,min=1,max=3"`
	Quantity         *float64      `json:"quantity" validate:"omitempty,gte=0"`
	Price            float64       `json:"price" validate:"gte=0"`
	Offer            float64       `json:"offer" validate:"gte=0"`
	Description      *string       `json:"description" validate:"omitempty,max=255"`
	Remove           *string       `json:"remove"`
	Include          *string       `json:"include"`
	Datasheet        *string       `json:"datasheet"`
	Status           ProductStatus `json:"status" validate:"oneof=pending released inactive"`
	Image            *string       `json:"image" validate:"omitempty,url"`
}

// Product is a catalog entry as returned by GET /products.
type Product struct {
	SKU              int64         `json:"idsku"`
	Title            string        `json:"title"`
	ProductType      string        `json:"productType"`
	CategoryID       int           `json:"idca,omitzero"`
	ClassificationID int           `json:"idcl,omitzero"`
	Price            float64       `json:"price"`
	Offer            float64       `json:"offer"`
	Description      string        `json:"description,omitempty"`
	Include          *string       `json:"include,omitempty"`
	Remove           *string       `json:"remove,omitempty"`
	Datasheet        *string       `json:"datasheet,omitempty"`
	Image            string        `json:"image,omitempty"`
	Status           ProductStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt,omitzero"`
}
