package domain

// MenuItem is a product on the Cardápio screen. Price is kept as entered.
type MenuItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl"`
}

// Order is a customer order on the Vendas screen. Item is free text and is not
// linked to the catalog.
type Order struct {
	ID       int64  `json:"id"`
	Customer string `json:"customer"`
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
}

type CarouselItem struct {
	ImageURL    string `json:"imageUrl" yaml:"imageUrl"`
	Description string `json:"description" yaml:"description"`
}

type ShopInfo struct {
	Name    string `json:"name"`
	About   string `json:"about"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}
