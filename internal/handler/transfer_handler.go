package handler

import (
	"net/http"

	"medstock/internal/middleware"
	"medstock/internal/service"
	"medstock/pkg/pagination"
	"medstock/pkg/response"

	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	transferService service.TransferService
	queryService    service.TransferQueryService
}

// NewTransferHandler sets up the routing dependencies for Transfer endpoints
func NewTransferHandler(transferService service.TransferService, queryService service.TransferQueryService) *TransferHandler {
	return &TransferHandler{transferService: transferService, queryService: queryService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TransferHandler) RegisterRoutes(router *gin.RouterGroup) {
	transfers := router.Group("/transfers", middleware.RequireAuth())
	{
		transfers.POST("", h.CreateTransfer)
		transfers.GET("", h.ListTransfers)
		transfers.GET("/stats", h.GetStats)
		transfers.GET("/:id", h.GetTransfer)
		transfers.GET("/:id/history", h.GetHistory)
		transfers.POST("/:id/approve-all", h.ApproveAllItems)
		transfers.POST("/:id/cancel", h.CancelTransfer)
		transfers.POST("/:id/items/:itemID/approve", h.ApproveItem)
		transfers.POST("/:id/items/:itemID/prepare", h.PrepareItem)
		transfers.POST("/:id/items/:itemID/deliver", h.DeliverItem)
		transfers.POST("/:id/items/:itemID/cancel", h.CancelItem)
	}
}

// CreateTransfer handles POST /transfers
// @Summary      Create a stock transfer request
// @Description  Creates a transfer between two departments with one or more requested items
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTransferRequest  true  "Create Transfer Payload"
// @Success      201      {object}  response.Response{data=service.TransferResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /transfers [post]
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	var req service.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transfer, err := h.transferService.CreateTransfer(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, transfer))
}

// ListTransfers handles GET /transfers
// @Summary      List transfers
// @Description  Lists transfers of the caller's organization, filterable by status, priority and department
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Transfer status filter"
// @Param        priority    query     string  false  "Priority filter"
// @Param        department  query     string  false  "Department ID, matches either side"
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response{data=[]service.TransferListEntry}
// @Router       /transfers [get]
func (h *TransferHandler) ListTransfers(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	params := pagination.Parse(c)
	filter := service.TransferFilter{
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		DepartmentID: c.Query("department"),
		Page:         params.Page,
		Limit:        params.Limit,
	}

	entries, total, err := h.queryService.ListTransfers(c.Request.Context(), actor, filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"transfers": entries,
		"meta":      pagination.NewMeta(params, total),
	}))
}

// GetTransfer handles GET /transfers/:id
// @Summary      Get transfer detail
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transfer ID"
// @Success      200  {object}  response.Response{data=service.TransferResponse}
// @Failure      404  {object}  response.Response
// @Router       /transfers/{id} [get]
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	transfer, err := h.transferService.GetTransfer(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// GetHistory handles GET /transfers/:id/history
// @Summary      Get transfer history
// @Description  Returns the chronological audit trail of a transfer
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transfer ID"
// @Success      200  {object}  response.Response{data=[]service.HistoryEntry}
// @Failure      404  {object}  response.Response
// @Router       /transfers/{id}/history [get]
func (h *TransferHandler) GetHistory(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	entries, err := h.queryService.GetHistory(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// GetStats handles GET /transfers/stats
// @Summary      Transfer statistics
// @Description  Status counts and most requested products for the caller's organization
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.TransferStats}
// @Router       /transfers/stats [get]
func (h *TransferHandler) GetStats(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	stats, err := h.queryService.GetStats(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// ApproveItem handles POST /transfers/:id/items/:itemID/approve
// @Summary      Approve a transfer item
// @Description  Approves a pending item with a possibly reduced quantity
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Transfer ID"
// @Param        itemID   path      string                      true  "Item ID"
// @Param        payload  body      service.ApproveItemRequest  true  "Approval Payload"
// @Success      200      {object}  response.Response{data=service.TransferResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /transfers/{id}/items/{itemID}/approve [post]
func (h *TransferHandler) ApproveItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	var req service.ApproveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transfer, err := h.transferService.ApproveItem(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// ApproveAllItems handles POST /transfers/:id/approve-all
// @Summary      Approve all pending items
// @Description  Approves every pending item at its requested quantity, all or nothing
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transfer ID"
// @Success      200  {object}  response.Response{data=service.TransferResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /transfers/{id}/approve-all [post]
func (h *TransferHandler) ApproveAllItems(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	transfer, err := h.transferService.ApproveAllItems(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// PrepareItem handles POST /transfers/:id/items/:itemID/prepare
// @Summary      Prepare a transfer item
// @Description  Reserves stock from explicitly selected batches of the supplying department
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Transfer ID"
// @Param        itemID   path      string                      true  "Item ID"
// @Param        payload  body      service.PrepareItemRequest  true  "Batch Selection Payload"
// @Success      200      {object}  response.Response{data=service.TransferResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /transfers/{id}/items/{itemID}/prepare [post]
func (h *TransferHandler) PrepareItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	var req service.PrepareItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transfer, err := h.transferService.PrepareItem(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// DeliverItem handles POST /transfers/:id/items/:itemID/deliver
// @Summary      Deliver a transfer item
// @Description  Confirms receipt of a prepared item and moves stock to the requesting department
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Transfer ID"
// @Param        itemID   path      string                      true  "Item ID"
// @Param        payload  body      service.DeliverItemRequest  true  "Delivery Payload"
// @Success      200      {object}  response.Response{data=service.TransferResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /transfers/{id}/items/{itemID}/deliver [post]
func (h *TransferHandler) DeliverItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	var req service.DeliverItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transfer, err := h.transferService.DeliverItem(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// CancelItem handles POST /transfers/:id/items/:itemID/cancel
// @Summary      Cancel a transfer item
// @Description  Cancels a single item, releasing any reserved stock
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Transfer ID"
// @Param        itemID   path      string                 true  "Item ID"
// @Param        payload  body      service.CancelRequest  true  "Cancellation Payload"
// @Success      200      {object}  response.Response{data=service.TransferResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /transfers/{id}/items/{itemID}/cancel [post]
func (h *TransferHandler) CancelItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	var req service.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transfer, err := h.transferService.CancelItem(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}

// CancelTransfer handles POST /transfers/:id/cancel
// @Summary      Cancel a whole transfer
// @Description  Cancels every remaining item, only allowed before any approval
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Transfer ID"
// @Param        payload  body      service.CancelRequest  true  "Cancellation Payload"
// @Success      200      {object}  response.Response{data=service.TransferResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /transfers/{id}/cancel [post]
func (h *TransferHandler) CancelTransfer(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Actor not found in context"))
		return
	}

	var req service.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	transfer, err := h.transferService.CancelTransfer(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transfer))
}
