package model

// Product is a record held by the record store.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Category string  `json:"category"`
	ImageURL string  `json:"imageUrl"`
}

// ProductInput is a Product without its store-assigned id.
type ProductInput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
	ImageURL string  `json:"imageUrl"`
}

// ProductFormData is the string-typed draft edited in a form.
type ProductFormData struct {
	Name     string
	Price    string
	Quantity string
	Category string
	ImageURL string
}

// WithID attaches an id to the input.
func (in ProductInput) WithID(id string) Product {
	return Product{
		ID:       id,
		Name:     in.Name,
		Price:    in.Price,
		Quantity: in.Quantity,
		Category: in.Category,
		ImageURL: in.ImageURL,
	}
}
