package request_models

type GrantPointsRequest struct {
	AccountID   string `json:"account_id" binding:"required,uuid"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Type        string `json:"type" binding:"required,oneof=PURCHASE BONUS ROLLOVER"`
	Description string `json:"description"`
}
