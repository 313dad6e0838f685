package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dbm "pointfetch/internal/models/db_models"
	"pointfetch/internal/models/request_models"
	"pointfetch/internal/services"
	"pointfetch/pkg/utils"
)

type PointsController struct {
	ledgerService services.LedgerService
}

func NewPointsController(ledgerService services.LedgerService) *PointsController {
	return &PointsController{ledgerService: ledgerService}
}

func (ctl *PointsController) GetBalance(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	balance, err := ctl.ledgerService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, balance, "")
}

func (ctl *PointsController) GetHistory(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	history, err := ctl.ledgerService.GetHistory(c.Request.Context(), accountID, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, history, "")
}

func (ctl *PointsController) GrantPoints(c *gin.Context) {
	var req request_models.GrantPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	balance, err := ctl.ledgerService.Grant(c.Request.Context(), accountID, req.Amount, dbm.PointsEntryType(req.Type), req.Description)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, balance, "Points granted")
}
