package request_models

type CreateOrderRequest struct {
	SiteID  string `json:"site_id"`
	ItemID  string `json:"item_id" binding:"required"`
	ItemURL string `json:"item_url" binding:"required,url"`
	Title   string `json:"title"`
}
