package response_models

import (
	dbm "pointfetch/internal/models/db_models"
)

type BalanceResponse struct {
	AccountID      string `json:"account_id"`
	CurrentPoints  int64  `json:"current_points"`
	TotalPurchased int64  `json:"total_purchased"`
	TotalUsed      int64  `json:"total_used"`
}

func ToBalanceResponse(b *dbm.PointsBalance) BalanceResponse {
	return BalanceResponse{
		AccountID:      b.AccountID.String(),
		CurrentPoints:  b.CurrentPoints,
		TotalPurchased: b.TotalPurchased,
		TotalUsed:      b.TotalUsed,
	}
}

type PointsHistoryResponse struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Amount         int64   `json:"amount"`
	Description    string  `json:"description,omitempty"`
	RelatedOrderID *string `json:"related_order_id,omitempty"`
	CreatedAt      int64   `json:"created_at"`
}

func ToPointsHistoryResponses(entries []dbm.PointsHistoryEntry) []PointsHistoryResponse {
	out := make([]PointsHistoryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		resp := PointsHistoryResponse{
			ID:          e.ID.String(),
			Type:        string(e.Type),
			Amount:      e.Amount,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		}
		if e.RelatedOrderID != nil {
			id := e.RelatedOrderID.String()
			resp.RelatedOrderID = &id
		}
		out = append(out, resp)
	}
	return out
}
