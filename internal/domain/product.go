package domain

// Product represents a stocked product. Quantity is the available stock.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Quantity    int     `json:"quantity" db:"quantity"`
}

// ProductFields holds the writable attributes of a product. Create and update
// both replace every field.
type ProductFields struct {
	Name        string
	Description *string
	Price       float64
	Quantity    int
}
