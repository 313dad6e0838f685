package response_models

import (
	dbm "pointfetch/internal/models/db_models"
)

type OrderResponse struct {
	ID          string `json:"id"`
	SiteID      string `json:"site_id"`
	ItemID      string `json:"item_id"`
	ItemURL     string `json:"item_url"`
	Title       string `json:"title,omitempty"`
	Cost        int64  `json:"cost"`
	Status      string `json:"status"`
	DownloadURL string `json:"download_url,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	Error       string `json:"error,omitempty"`
	Refunded    bool   `json:"refunded"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func ToOrderResponse(o *dbm.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID.String(),
		SiteID:      o.SiteID,
		ItemID:      o.ItemID,
		ItemURL:     o.ItemURL,
		Title:       o.Title,
		Cost:        o.Cost,
		Status:      string(o.Status),
		DownloadURL: o.DownloadURL,
		FileName:    o.FileName,
		FileSize:    o.FileSize,
		Error:       o.FailureReason,
		Refunded:    o.RefundedAt != nil,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func ToOrderResponses(orders []dbm.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}
