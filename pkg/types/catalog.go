package types

// Supported currencies.
const (
	CurrencyUSD = "USD"
	CurrencyRUB = "RUB"
	CurrencyCRC = "CRC"
)

// DefaultCurrency is applied when the caller omits one.
const DefaultCurrency = CurrencyRUB

// Translation holds the localized name/description pair for one locale.
type Translation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID              int64                  `json:"id"`
	Name            string                 `json:"name"`
	Price           float64                `json:"price"`
	Description     string                 `json:"description"`
	Currency        string                 `json:"currency"`
	CategoryID      int64                  `json:"category_id"`
	SubcategoryID   int64                  `json:"subcategory_id,omitempty"`
	Characteristics map[string]string      `json:"characteristics,omitempty"`
	Images          []string               `json:"images"`
	RelatedProducts []Product              `json:"related_products,omitempty"`
	Translations    map[string]Translation `json:"translations,omitempty"`
}

// ProductPage is the payload of a paginated product listing.
type ProductPage struct {
	Items      []Product `json:"items"`
	TotalItems int64     `json:"total_items"`
}

type Subcategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

type GalleryItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Full        string `json:"full"`
	Thumbnail   string `json:"thumbnail"`
	Category    string `json:"category"`
	CategoryID  int64  `json:"category_id"`
}
