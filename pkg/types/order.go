package types

// OrderItem is the projection of one cart line sent at checkout.
// Name, price, and image are dropped: the backend is the source of
// truth for pricing at order time.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the body POSTed to /orders. Language travels in the
// body, never in the query string.
type OrderRequest struct {
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone"`
	Comment           string      `json:"comment,omitempty"`
	Items             []OrderItem `json:"items"`
	Language          string      `json:"language"`
	RecaptchaResponse string      `json:"recaptchaResponse"`
}

// OrderReceipt is the payload of a successful order creation.
type OrderReceipt struct {
	OrderID int64  `json:"order_id"`
	Message string `json:"message,omitempty"`
}

// ContactRequest is the body POSTed to /contact.
type ContactRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Language          string `json:"language"`
	Message           string `json:"message"`
	RecaptchaResponse string `json:"recaptchaResponse"`
}

// ContactReceipt is the payload of a successful contact submission.
type ContactReceipt struct {
	Message string `json:"message"`
}
