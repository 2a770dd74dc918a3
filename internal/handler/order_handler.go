package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"orderdesk/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderItemRequest struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Details   string `json:"details"`
}

type OrderCreateRequest struct {
	Items    []OrderItemRequest `json:"items"`
	DineType string             `json:"dine_type"`
	//文字列でも数値でも受ける
	TableNo json.RawMessage `json:"table_no"`
	Note    string          `json:"note"`

	Subtotal      *int64 `json:"subtotal"`
	Discount      *int64 `json:"discount"`
	Allowance     *int64 `json:"allowance"`
	Total         *int64 `json:"total"`
	ApplyDiscount bool   `json:"apply_discount"`
}

// 金額は型を決めずに受けて usecase で変換する
type OrderAmountsRequest struct {
	Subtotal  any `json:"subtotal"`
	Discount  any `json:"discount"`
	Allowance any `json:"allowance"`
	Total     any `json:"total"`
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

// 末尾スラッシュ付きは server 側の RemoveTrailingSlash で吸収する
func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/orders")

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PATCH("/:id", h.updateAmounts)
	g.PATCH("/:id/status", h.updateStatus)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	tableNo, err := parseTableNo(req.TableNo)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid table_no"})
	}

	items := make([]usecase.CreateOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CreateOrderItemInput{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Details:   it.Details,
		})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), usecase.CreateOrderInput{
		DineType:      req.DineType,
		TableNo:       tableNo,
		Note:          req.Note,
		Items:         items,
		Subtotal:      req.Subtotal,
		Discount:      req.Discount,
		Allowance:     req.Allowance,
		Total:         req.Total,
		ApplyDiscount: req.ApplyDiscount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListOrders(c.Request().Context(), usecase.ListOrdersInput{
		Status: c.QueryParam("status"),
		Limit:  limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := orderIDParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	out, err := h.uc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateAmounts(c echo.Context) error {
	id, ok := orderIDParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	var req OrderAmountsRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AmendAmounts(c.Request().Context(), id, usecase.AmendAmountsInput{
		Subtotal:  req.Subtotal,
		Discount:  req.Discount,
		Allowance: req.Allowance,
		Total:     req.Total,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	id, ok := orderIDParam(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	var req OrderStatusUpdateRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
	}

	out, err := h.uc.AdvanceStatus(c.Request().Context(), id, usecase.UpdateStatusInput{Status: req.Status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 数値でない id はルートに一致しない扱い（404）
func orderIDParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseTableNo(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errors.New("table_no must be string or number")
	}
	s := n.String()
	return &s, nil
}
