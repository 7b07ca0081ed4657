package shop

// Request and response envelopes as the backend sends them.
//
// Success flags are pointers: acks from the cart endpoints often omit the
// field entirely, and a missing flag must not read as a rejection.

type userRequest struct {
	UserID string `json:"userId"`
}

type cartItemRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"_id"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"_id"`
	Quantity  int    `json:"productQty"`
}

type removeItemRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"_id"`
}

type ackResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (a *ackResponse) rejected() bool {
	return a.Success != nil && !*a.Success
}

type productListResponse struct {
	ackResponse
	Products []Product `json:"products"`
}

type productResponse struct {
	Product *Product `json:"product"`
}

type cartResponse struct {
	Cart *struct {
		ProductsInCart []CartEntry `json:"productsInCart"`
	} `json:"cart"`
}

type authResponse struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type orderListResponse struct {
	ackResponse
	Orders []Order `json:"orders"`
}

type userListResponse struct {
	ackResponse
	Users []User `json:"users"`
}

type sellerResponse struct {
	ackResponse
	SellerID string `json:"sellerId"`
}
