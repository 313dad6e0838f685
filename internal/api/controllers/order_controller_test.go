package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointfetch/internal/api/controllers"
	dbm "pointfetch/internal/models/db_models"
	"pointfetch/internal/models/request_models"
	"pointfetch/pkg/utils"
)

type stubOrderService struct {
	createOrder func(ctx context.Context, accountID uuid.UUID, in request_models.CreateOrderRequest) (*dbm.Order, error)
	getOrder    func(ctx context.Context, accountID uuid.UUID, orderID uuid.UUID) (*dbm.Order, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, accountID uuid.UUID, in request_models.CreateOrderRequest) (*dbm.Order, error) {
	return s.createOrder(ctx, accountID, in)
}

func (s *stubOrderService) GetOrder(ctx context.Context, accountID uuid.UUID, orderID uuid.UUID) (*dbm.Order, error) {
	return s.getOrder(ctx, accountID, orderID)
}

func (s *stubOrderService) ListOrders(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.Order, error) {
	return nil, nil
}

func (s *stubOrderService) Cancel(ctx context.Context, accountID uuid.UUID, orderID uuid.UUID) (*dbm.Order, error) {
	return nil, nil
}

func (s *stubOrderService) Submit(ctx context.Context, orderID uuid.UUID) error { return nil }

func (s *stubOrderService) PollOnce(ctx context.Context, orderID uuid.UUID) error { return nil }

func newTestRouter(svc *stubOrderService, accountID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", accountID.String())
		c.Next()
	})
	ctl := controllers.NewOrderController(svc)
	r.POST("/orders", ctl.CreateOrder)
	r.GET("/orders/:id", ctl.GetOrder)
	return r
}

func TestCreateOrderEndpoint(t *testing.T) {
	accountID := uuid.New()
	svc := &stubOrderService{
		createOrder: func(ctx context.Context, gotAccount uuid.UUID, in request_models.CreateOrderRequest) (*dbm.Order, error) {
			assert.Equal(t, accountID, gotAccount)
			return &dbm.Order{
				BaseModel: dbm.BaseModel{ID: uuid.New()},
				AccountID: gotAccount,
				SiteID:    "freepik",
				ItemURL:   in.ItemURL,
				Cost:      10,
				Status:    dbm.OrderStatusPending,
			}, nil
		},
	}
	router := newTestRouter(svc, accountID)

	body, _ := json.Marshal(gin.H{
		"item_id":  "123",
		"item_url": "https://www.freepik.com/photo/123",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, float64(10), data["cost"])
}

func TestCreateOrderEndpointInsufficientPoints(t *testing.T) {
	svc := &stubOrderService{
		createOrder: func(ctx context.Context, accountID uuid.UUID, in request_models.CreateOrderRequest) (*dbm.Order, error) {
			return nil, utils.ErrInsufficientPoints
		},
	}
	router := newTestRouter(svc, uuid.New())

	body, _ := json.Marshal(gin.H{
		"item_id":  "123",
		"item_url": "https://www.freepik.com/photo/123",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestCreateOrderEndpointRejectsBadBody(t *testing.T) {
	router := newTestRouter(&stubOrderService{}, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{"item_id":"1"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderEndpoint(t *testing.T) {
	accountID := uuid.New()
	orderID := uuid.New()
	svc := &stubOrderService{
		getOrder: func(ctx context.Context, gotAccount uuid.UUID, gotOrder uuid.UUID) (*dbm.Order, error) {
			assert.Equal(t, orderID, gotOrder)
			return &dbm.Order{
				BaseModel:   dbm.BaseModel{ID: gotOrder},
				AccountID:   gotAccount,
				Status:      dbm.OrderStatusCompleted,
				DownloadURL: "https://cdn.example.com/a.zip",
			}, nil
		},
	}
	router := newTestRouter(svc, accountID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "COMPLETED", data["status"])
	assert.Equal(t, "https://cdn.example.com/a.zip", data["download_url"])
}

func TestGetOrderEndpointBadID(t *testing.T) {
	router := newTestRouter(&stubOrderService{}, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderEndpointNotFound(t *testing.T) {
	svc := &stubOrderService{
		getOrder: func(ctx context.Context, accountID uuid.UUID, orderID uuid.UUID) (*dbm.Order, error) {
			return nil, utils.ErrOrderNotFound
		},
	}
	router := newTestRouter(svc, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
