package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"medstock/internal/logging"
	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type TransferItemRequest struct {
	ProductID         string `json:"product_id" binding:"required"`
	RequestedQuantity int    `json:"requested_quantity" binding:"required,gt=0"`
	Notes             string `json:"notes"`
}

type CreateTransferRequest struct {
	RequestingDepartmentID string                `json:"requesting_department_id" binding:"required"`
	SupplyingDepartmentID  string                `json:"supplying_department_id" binding:"required"`
	Title                  string                `json:"title" binding:"required"`
	RequestReason          string                `json:"request_reason" binding:"required"`
	Priority               string                `json:"priority" binding:"omitempty,oneof=NORMAL URGENT CRITICAL"`
	Notes                  string                `json:"notes"`
	Items                  []TransferItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ApproveItemRequest struct {
	ApprovedQuantity int    `json:"approved_quantity" binding:"required"`
	Notes            string `json:"notes"`
}

type PrepareItemRequest struct {
	BatchSelections []BatchSelection `json:"batch_selections" binding:"required,dive"`
	Notes           string           `json:"notes"`
}

type DeliverItemRequest struct {
	ReceivedQuantity int    `json:"received_quantity" binding:"required"`
	Notes            string `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type BatchAllocationResponse struct {
	BatchID   string `json:"batch_id"`
	LotNumber string `json:"lot_number,omitempty"`
	Quantity  int    `json:"quantity"`
}

type TransferItemResponse struct {
	ID                string                    `json:"id"`
	ProductID         string                    `json:"product_id"`
	ProductName       string                    `json:"product_name,omitempty"`
	RequestedQuantity int                       `json:"requested_quantity"`
	ApprovedQuantity  *int                      `json:"approved_quantity"`
	PreparedQuantity  *int                      `json:"prepared_quantity"`
	ReceivedQuantity  *int                      `json:"received_quantity"`
	Status            string                    `json:"status"`
	CancelReason      string                    `json:"cancel_reason,omitempty"`
	Notes             string                    `json:"notes,omitempty"`
	Batches           []BatchAllocationResponse `json:"batches,omitempty"`
}

type TransferResponse struct {
	ID                     string                 `json:"id"`
	Code                   string                 `json:"code"`
	Title                  string                 `json:"title"`
	RequestReason          string                 `json:"request_reason"`
	Priority               string                 `json:"priority"`
	Notes                  string                 `json:"notes,omitempty"`
	Status                 string                 `json:"status"`
	RequestingDepartmentID string                 `json:"requesting_department_id"`
	SupplyingDepartmentID  string                 `json:"supplying_department_id"`
	RequestedAt            string                 `json:"requested_at"`
	ApprovedAt             *string                `json:"approved_at"`
	PreparedAt             *string                `json:"prepared_at"`
	DeliveredAt            *string                `json:"delivered_at"`
	CancelledAt            *string                `json:"cancelled_at"`
	Items                  []TransferItemResponse `json:"items"`
}

// --- Interface ---

// TransferService owns the transfer and transfer-item lifecycle. Every
// mutating operation runs inside one transaction, re-reads current state under
// a row lock, enforces the quantity invariants and appends a history record.
type TransferService interface {
	CreateTransfer(ctx context.Context, actor Actor, req CreateTransferRequest) (TransferResponse, error)
	GetTransfer(ctx context.Context, actor Actor, transferID string) (TransferResponse, error)
	ApproveItem(ctx context.Context, actor Actor, transferID, itemID string, req ApproveItemRequest) (TransferResponse, error)
	ApproveAllItems(ctx context.Context, actor Actor, transferID string) (TransferResponse, error)
	PrepareItem(ctx context.Context, actor Actor, transferID, itemID string, req PrepareItemRequest) (TransferResponse, error)
	DeliverItem(ctx context.Context, actor Actor, transferID, itemID string, req DeliverItemRequest) (TransferResponse, error)
	CancelItem(ctx context.Context, actor Actor, transferID, itemID string, req CancelRequest) (TransferResponse, error)
	CancelTransfer(ctx context.Context, actor Actor, transferID string, req CancelRequest) (TransferResponse, error)
}

type transferService struct {
	transferRepo repository.TransferRepository
	ledger       repository.StockLedger
	historyRepo  repository.HistoryRepository
	deptRepo     repository.DepartmentRepository
	productRepo  repository.ProductRepository
	txManager    repository.TransactionManager
}

func NewTransferService(
	transferRepo repository.TransferRepository,
	ledger repository.StockLedger,
	historyRepo repository.HistoryRepository,
	deptRepo repository.DepartmentRepository,
	productRepo repository.ProductRepository,
	txManager repository.TransactionManager,
) TransferService {
	return &transferService{
		transferRepo: transferRepo,
		ledger:       ledger,
		historyRepo:  historyRepo,
		deptRepo:     deptRepo,
		productRepo:  productRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *transferService) CreateTransfer(ctx context.Context, actor Actor, req CreateTransferRequest) (TransferResponse, error) {
	requestingID, err := uuid.Parse(req.RequestingDepartmentID)
	if err != nil {
		return TransferResponse{}, &ValidationError{Field: "requesting_department_id", Reason: "invalid id"}
	}
	supplyingID, err := uuid.Parse(req.SupplyingDepartmentID)
	if err != nil {
		return TransferResponse{}, &ValidationError{Field: "supplying_department_id", Reason: "invalid id"}
	}
	if requestingID == supplyingID {
		return TransferResponse{}, &ValidationError{Field: "supplying_department_id", Reason: "requesting and supplying department must differ"}
	}
	if len(req.Items) == 0 {
		return TransferResponse{}, &ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	if strings.TrimSpace(req.Title) == "" {
		return TransferResponse{}, &ValidationError{Field: "title", Reason: "title is required"}
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !model.ValidPriority(priority) {
		return TransferResponse{}, &ValidationError{Field: "priority", Reason: "must be NORMAL, URGENT or CRITICAL"}
	}

	items := make([]model.TransferItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		productID, parseErr := uuid.Parse(itemReq.ProductID)
		if parseErr != nil {
			return TransferResponse{}, &ValidationError{Field: "items.product_id", Reason: "invalid id"}
		}
		if itemReq.RequestedQuantity <= 0 {
			return TransferResponse{}, &ValidationError{Field: "items.requested_quantity", Reason: "must be greater than zero"}
		}
		items = append(items, model.TransferItem{
			ProductID:         productID,
			RequestedQuantity: itemReq.RequestedQuantity,
			Status:            model.ItemStatusPending,
			Notes:             itemReq.Notes,
		})
	}

	transfer := &model.Transfer{
		OrganizationID:         actor.OrganizationID,
		RequestingDepartmentID: requestingID,
		SupplyingDepartmentID:  supplyingID,
		Title:                  req.Title,
		RequestReason:          req.RequestReason,
		Priority:               priority,
		Notes:                  req.Notes,
		Status:                 model.TransferStatusPending,
	}

	if err := authorizeTransferOp(actor, OpCreateTransfer, transfer); err != nil {
		return TransferResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, deptID := range []uuid.UUID{requestingID, supplyingID} {
			if _, findErr := s.deptRepo.FindByID(txCtx, actor.OrganizationID, deptID); findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return &NotFoundError{Entity: "department", ID: deptID.String()}
				}
				return findErr
			}
		}
		for _, item := range items {
			if _, findErr := s.productRepo.FindByID(txCtx, actor.OrganizationID, item.ProductID); findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return &NotFoundError{Entity: "product", ID: item.ProductID.String()}
				}
				return findErr
			}
		}

		code, codeErr := s.transferRepo.NextCode(txCtx)
		if codeErr != nil {
			return codeErr
		}

		now := time.Now()
		transfer.Code = code
		transfer.RequestedAt = now
		transfer.Items = items

		if createErr := s.transferRepo.Create(txCtx, transfer); createErr != nil {
			return createErr
		}

		return s.appendHistory(txCtx, transfer, nil, actor, model.HistoryActionCreated,
			"", model.TransferStatusPending, req.Notes, map[string]interface{}{
				"item_count": len(items),
				"priority":   priority,
			})
	})
	if err != nil {
		return TransferResponse{}, err
	}

	logging.GetLogger().WithFields(logrus.Fields{
		"transfer": transfer.Code,
		"actor":    actor.UserID,
	}).Info("transfer created")

	return s.reload(ctx, actor, transfer.ID)
}

func (s *transferService) GetTransfer(ctx context.Context, actor Actor, transferID string) (TransferResponse, error) {
	id, err := uuid.Parse(transferID)
	if err != nil {
		return TransferResponse{}, &NotFoundError{Entity: "transfer", ID: transferID}
	}
	return s.reload(ctx, actor, id)
}

func (s *transferService) ApproveItem(ctx context.Context, actor Actor, transferID, itemID string, req ApproveItemRequest) (TransferResponse, error) {
	return s.itemTransition(ctx, actor, transferID, itemID, OpApproveItem,
		func(txCtx context.Context, transfer *model.Transfer, item *model.TransferItem) error {
			return s.approveOne(txCtx, transfer, item, actor, req.ApprovedQuantity, req.Notes)
		})
}

func (s *transferService) ApproveAllItems(ctx context.Context, actor Actor, transferID string) (TransferResponse, error) {
	id, err := uuid.Parse(transferID)
	if err != nil {
		return TransferResponse{}, &NotFoundError{Entity: "transfer", ID: transferID}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		transfer, loadErr := s.loadForUpdate(txCtx, actor, id)
		if loadErr != nil {
			return loadErr
		}
		if authErr := authorizeTransferOp(actor, OpApproveItem, transfer); authErr != nil {
			return authErr
		}

		approved := 0
		for i := range transfer.Items {
			item := &transfer.Items[i]
			if item.Status != model.ItemStatusPending {
				continue
			}
			// Full requested quantity; any single failure aborts the whole
			// batch so the parent timestamp state stays consistent.
			if appErr := s.approveOne(txCtx, transfer, item, actor, item.RequestedQuantity, ""); appErr != nil {
				return appErr
			}
			approved++
		}

		if approved == 0 {
			return &InvalidTransitionError{Entity: "transfer", From: transfer.Status, Attempted: "approve all items"}
		}
		return nil
	})
	if err != nil {
		return TransferResponse{}, err
	}

	return s.reload(ctx, actor, id)
}

// approveOne applies the PENDING -> APPROVED transition to a single item.
// Caller holds the transfer row lock.
func (s *transferService) approveOne(ctx context.Context, transfer *model.Transfer, item *model.TransferItem, actor Actor, quantity int, notes string) error {
	if item.Status != model.ItemStatusPending {
		return &InvalidTransitionError{Entity: "transfer item", From: item.Status, Attempted: "approve"}
	}
	if quantity <= 0 {
		return &ValidationError{Field: "approved_quantity", Reason: "must be greater than zero"}
	}
	if quantity > item.RequestedQuantity {
		return &ValidationError{Field: "approved_quantity", Reason: "cannot exceed requested quantity"}
	}

	item.ApprovedQuantity = &quantity
	item.Status = model.ItemStatusApproved
	if err := s.transferRepo.SaveItem(ctx, item); err != nil {
		return err
	}

	now := time.Now()
	if transfer.ApprovedAt == nil {
		transfer.ApprovedAt = &now
	}
	if err := s.syncAggregate(ctx, transfer, now); err != nil {
		return err
	}

	return s.appendHistory(ctx, transfer, item, actor, model.HistoryActionApproved,
		model.ItemStatusPending, model.ItemStatusApproved, notes, map[string]interface{}{
			"approved_quantity":  quantity,
			"requested_quantity": item.RequestedQuantity,
		})
}

func (s *transferService) PrepareItem(ctx context.Context, actor Actor, transferID, itemID string, req PrepareItemRequest) (TransferResponse, error) {
	return s.itemTransition(ctx, actor, transferID, itemID, OpPrepareItem,
		func(txCtx context.Context, transfer *model.Transfer, item *model.TransferItem) error {
			if item.Status != model.ItemStatusApproved {
				return &InvalidTransitionError{Entity: "transfer item", From: item.Status, Attempted: "prepare"}
			}

			total := 0
			for _, sel := range req.BatchSelections {
				total += sel.Quantity
			}
			if total <= 0 {
				return &ValidationError{Field: "batch_selections", Reason: "selected total must be greater than zero"}
			}
			approved := *item.ApprovedQuantity
			if total > approved {
				return &ValidationError{Field: "batch_selections", Reason: "selected total cannot exceed approved quantity"}
			}

			// Availability is checked against locked rows so the check and the
			// decrement below form one transactional unit.
			batches, err := s.ledger.GetBatchesForUpdate(txCtx, transfer.SupplyingDepartmentID, item.ProductID)
			if err != nil {
				return err
			}

			violations := ValidateAllocation(batches, req.BatchSelections, approved)
			for _, v := range violations {
				if v.Reason != ViolationExceedsAvailable {
					return &ValidationError{Field: "batch_selections", Reason: v.String()}
				}
			}
			for _, v := range violations {
				return &InsufficientStockError{BatchID: v.BatchID, Requested: v.Requested, Available: v.Available}
			}

			lotByID := make(map[uuid.UUID]string, len(batches))
			for _, b := range batches {
				lotByID[b.ID] = b.LotNumber
			}

			allocations := make([]model.TransferItemBatch, 0, len(req.BatchSelections))
			batchDetails := make([]map[string]interface{}, 0, len(req.BatchSelections))
			for _, sel := range req.BatchSelections {
				if err := s.ledger.Reserve(txCtx, sel.BatchID, sel.Quantity); err != nil {
					if errors.Is(err, repository.ErrInsufficientStock) {
						return &InsufficientStockError{BatchID: sel.BatchID, Requested: sel.Quantity}
					}
					return err
				}
				allocations = append(allocations, model.TransferItemBatch{
					TransferItemID: item.ID,
					BatchID:        sel.BatchID,
					Quantity:       sel.Quantity,
				})
				batchDetails = append(batchDetails, map[string]interface{}{
					"batch_id":   sel.BatchID.String(),
					"lot_number": lotByID[sel.BatchID],
					"quantity":   sel.Quantity,
				})
			}

			if err := s.transferRepo.CreateItemBatches(txCtx, allocations); err != nil {
				return err
			}
			item.Batches = allocations

			item.PreparedQuantity = &total
			item.Status = model.ItemStatusPrepared
			if err := s.transferRepo.SaveItem(txCtx, item); err != nil {
				return err
			}

			now := time.Now()
			if transfer.PreparedAt == nil {
				transfer.PreparedAt = &now
			}
			if err := s.syncAggregate(txCtx, transfer, now); err != nil {
				return err
			}

			return s.appendHistory(txCtx, transfer, item, actor, model.HistoryActionPrepared,
				model.ItemStatusApproved, model.ItemStatusPrepared, req.Notes, map[string]interface{}{
					"prepared_quantity": total,
					"batches":           batchDetails,
				})
		})
}

func (s *transferService) DeliverItem(ctx context.Context, actor Actor, transferID, itemID string, req DeliverItemRequest) (TransferResponse, error) {
	return s.itemTransition(ctx, actor, transferID, itemID, OpDeliverItem,
		func(txCtx context.Context, transfer *model.Transfer, item *model.TransferItem) error {
			if item.Status != model.ItemStatusPrepared {
				return &InvalidTransitionError{Entity: "transfer item", From: item.Status, Attempted: "deliver"}
			}

			prepared := *item.PreparedQuantity
			if req.ReceivedQuantity <= 0 {
				return &ValidationError{Field: "received_quantity", Reason: "must be greater than zero"}
			}
			if req.ReceivedQuantity > prepared {
				return &ValidationError{Field: "received_quantity", Reason: "cannot exceed prepared quantity"}
			}

			// Fill allocations in order; each batch's unfilled remainder flows
			// back to the supplying department's available pool inside Commit.
			remaining := req.ReceivedQuantity
			for _, alloc := range item.Batches {
				delivered := alloc.Quantity
				if delivered > remaining {
					delivered = remaining
				}
				if err := s.ledger.Commit(txCtx, alloc.BatchID, alloc.Quantity, delivered, transfer.RequestingDepartmentID); err != nil {
					return err
				}
				remaining -= delivered
			}

			received := req.ReceivedQuantity
			item.ReceivedQuantity = &received
			item.Status = model.ItemStatusDelivered
			if err := s.transferRepo.SaveItem(txCtx, item); err != nil {
				return err
			}

			now := time.Now()
			if transfer.DeliveredAt == nil {
				transfer.DeliveredAt = &now
			}
			if err := s.syncAggregate(txCtx, transfer, now); err != nil {
				return err
			}

			return s.appendHistory(txCtx, transfer, item, actor, model.HistoryActionDelivered,
				model.ItemStatusPrepared, model.ItemStatusDelivered, req.Notes, map[string]interface{}{
					"received_quantity": received,
					"shortfall":         prepared - received,
				})
		})
}

func (s *transferService) CancelItem(ctx context.Context, actor Actor, transferID, itemID string, req CancelRequest) (TransferResponse, error) {
	return s.itemTransition(ctx, actor, transferID, itemID, OpCancelItem,
		func(txCtx context.Context, transfer *model.Transfer, item *model.TransferItem) error {
			if strings.TrimSpace(req.Reason) == "" {
				return &ValidationError{Field: "reason", Reason: "cancellation reason is required"}
			}
			return s.cancelOne(txCtx, transfer, item, actor, req.Reason)
		})
}

// cancelOne applies the CANCELLED transition to a single item, releasing any
// batch reservations it holds. Caller holds the transfer row lock.
func (s *transferService) cancelOne(ctx context.Context, transfer *model.Transfer, item *model.TransferItem, actor Actor, reason string) error {
	if item.Status == model.ItemStatusDelivered || item.Status == model.ItemStatusCancelled {
		return &InvalidTransitionError{Entity: "transfer item", From: item.Status, Attempted: "cancel"}
	}

	fromStatus := item.Status
	if item.Status == model.ItemStatusPrepared {
		for _, alloc := range item.Batches {
			if err := s.ledger.Release(ctx, alloc.BatchID, alloc.Quantity); err != nil {
				return err
			}
		}
	}

	item.Status = model.ItemStatusCancelled
	item.CancelReason = reason
	if err := s.transferRepo.SaveItem(ctx, item); err != nil {
		return err
	}

	if err := s.syncAggregate(ctx, transfer, time.Now()); err != nil {
		return err
	}

	return s.appendHistory(ctx, transfer, item, actor, model.HistoryActionCancelled,
		fromStatus, model.ItemStatusCancelled, reason, nil)
}

func (s *transferService) CancelTransfer(ctx context.Context, actor Actor, transferID string, req CancelRequest) (TransferResponse, error) {
	id, err := uuid.Parse(transferID)
	if err != nil {
		return TransferResponse{}, &NotFoundError{Entity: "transfer", ID: transferID}
	}
	if strings.TrimSpace(req.Reason) == "" {
		return TransferResponse{}, &ValidationError{Field: "reason", Reason: "cancellation reason is required"}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		transfer, loadErr := s.loadForUpdate(txCtx, actor, id)
		if loadErr != nil {
			return loadErr
		}
		// Whole-transfer cancellation is blocked once any item has been
		// approved; only item-level cancellation remains after that.
		if authErr := authorizeTransferOp(actor, OpCancelTransfer, transfer); authErr != nil {
			return authErr
		}

		for i := range transfer.Items {
			item := &transfer.Items[i]
			if item.Status == model.ItemStatusDelivered || item.Status == model.ItemStatusCancelled {
				continue
			}
			if cancelErr := s.cancelOne(txCtx, transfer, item, actor, req.Reason); cancelErr != nil {
				return cancelErr
			}
		}

		now := time.Now()
		transfer.Status = model.TransferStatusCancelled
		if transfer.CancelledAt == nil {
			transfer.CancelledAt = &now
		}
		if saveErr := s.transferRepo.Save(txCtx, transfer); saveErr != nil {
			return saveErr
		}

		return s.appendHistory(txCtx, transfer, nil, actor, model.HistoryActionCancelled,
			model.TransferStatusPending, model.TransferStatusCancelled, req.Reason, nil)
	})
	if err != nil {
		return TransferResponse{}, err
	}

	logging.GetLogger().WithFields(logrus.Fields{
		"transfer": id,
		"actor":    actor.UserID,
	}).Info("transfer cancelled")

	return s.reload(ctx, actor, id)
}

// --- Helpers ---

// itemTransition wraps the shared transaction skeleton of the item-level
// operations: lock the transfer, authorize, locate the item, run the
// transition, reload the projection.
func (s *transferService) itemTransition(
	ctx context.Context,
	actor Actor,
	transferID, itemID string,
	op string,
	fn func(txCtx context.Context, transfer *model.Transfer, item *model.TransferItem) error,
) (TransferResponse, error) {
	tID, err := uuid.Parse(transferID)
	if err != nil {
		return TransferResponse{}, &NotFoundError{Entity: "transfer", ID: transferID}
	}
	iID, err := uuid.Parse(itemID)
	if err != nil {
		return TransferResponse{}, &NotFoundError{Entity: "transfer item", ID: itemID}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		transfer, loadErr := s.loadForUpdate(txCtx, actor, tID)
		if loadErr != nil {
			return loadErr
		}
		if authErr := authorizeTransferOp(actor, op, transfer); authErr != nil {
			return authErr
		}

		var item *model.TransferItem
		for i := range transfer.Items {
			if transfer.Items[i].ID == iID {
				item = &transfer.Items[i]
				break
			}
		}
		if item == nil {
			return &NotFoundError{Entity: "transfer item", ID: itemID}
		}

		return fn(txCtx, transfer, item)
	})
	if err != nil {
		return TransferResponse{}, err
	}

	logging.GetLogger().WithFields(logrus.Fields{
		"transfer": tID,
		"item":     iID,
		"actor":    actor.UserID,
		"op":       op,
	}).Info("transfer item transition applied")

	return s.reload(ctx, actor, tID)
}

func (s *transferService) loadForUpdate(ctx context.Context, actor Actor, id uuid.UUID) (*model.Transfer, error) {
	transfer, err := s.transferRepo.FindForUpdate(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "transfer", ID: id.String()}
		}
		return nil, err
	}
	return transfer, nil
}

// syncAggregate recomputes the denormalized transfer status from its items and
// persists it. cancelledAt mirrors the derived status: it is stamped when the
// last live item goes away.
func (s *transferService) syncAggregate(ctx context.Context, transfer *model.Transfer, now time.Time) error {
	transfer.Status = model.DeriveTransferStatus(transfer.Items)
	if transfer.Status == model.TransferStatusCancelled && transfer.CancelledAt == nil {
		transfer.CancelledAt = &now
	}
	return s.transferRepo.Save(ctx, transfer)
}

func (s *transferService) appendHistory(ctx context.Context, transfer *model.Transfer, item *model.TransferItem, actor Actor, action, from, to, notes string, details map[string]interface{}) error {
	record := &model.TransferHistory{
		TransferID:    transfer.ID,
		Action:        action,
		FromStatus:    from,
		ToStatus:      to,
		ChangedByID:   actor.UserID,
		ChangedByName: actor.Name,
		ChangedByRole: actor.Role,
		Notes:         notes,
	}
	if item != nil {
		itemID := item.ID
		record.ItemID = &itemID
	}
	if details != nil {
		encoded, _ := json.Marshal(details)
		record.Details = string(encoded)
	}
	return s.historyRepo.Append(ctx, record)
}

func (s *transferService) reload(ctx context.Context, actor Actor, id uuid.UUID) (TransferResponse, error) {
	transfer, err := s.transferRepo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransferResponse{}, &NotFoundError{Entity: "transfer", ID: id.String()}
		}
		return TransferResponse{}, err
	}
	return toTransferResponse(transfer), nil
}

func toTransferResponse(t *model.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:                     t.ID.String(),
		Code:                   t.Code,
		Title:                  t.Title,
		RequestReason:          t.RequestReason,
		Priority:               t.Priority,
		Notes:                  t.Notes,
		Status:                 t.Status,
		RequestingDepartmentID: t.RequestingDepartmentID.String(),
		SupplyingDepartmentID:  t.SupplyingDepartmentID.String(),
		RequestedAt:            t.RequestedAt.Format(time.RFC3339),
		ApprovedAt:             formatTimePtr(t.ApprovedAt),
		PreparedAt:             formatTimePtr(t.PreparedAt),
		DeliveredAt:            formatTimePtr(t.DeliveredAt),
		CancelledAt:            formatTimePtr(t.CancelledAt),
	}

	resp.Items = make([]TransferItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		itemResp := TransferItemResponse{
			ID:                item.ID.String(),
			ProductID:         item.ProductID.String(),
			RequestedQuantity: item.RequestedQuantity,
			ApprovedQuantity:  item.ApprovedQuantity,
			PreparedQuantity:  item.PreparedQuantity,
			ReceivedQuantity:  item.ReceivedQuantity,
			Status:            item.Status,
			CancelReason:      item.CancelReason,
			Notes:             item.Notes,
		}
		if item.Product != nil {
			itemResp.ProductName = item.Product.Name
		}
		for _, alloc := range item.Batches {
			batchResp := BatchAllocationResponse{
				BatchID:  alloc.BatchID.String(),
				Quantity: alloc.Quantity,
			}
			if alloc.Batch != nil {
				batchResp.LotNumber = alloc.Batch.LotNumber
			}
			itemResp.Batches = append(itemResp.Batches, batchResp)
		}
		resp.Items = append(resp.Items, itemResp)
	}

	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
