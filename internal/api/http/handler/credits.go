package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/api/http/middleware"
	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
	"github.com/dermai-app/dermai-server/internal/service"
)

const dateLayout = "2006-01-02"

// LedgerService defines balance mutation operations.
type LedgerService interface {
	Debit(ctx context.Context, userID uuid.UUID, amount int64, description string, reference *uuid.UUID) (int64, error)
	Credit(ctx context.Context, userID uuid.UUID, amount int64, kind model.TransactionKind, description string, packageID *int) (int64, error)
	Remove(ctx context.Context, userID uuid.UUID, amount int64, description string) (newBalance, actualRemoved int64, err error)
	Update(ctx context.Context, userID uuid.UUID, change int64, operationType, reason string) (oldBalance, newBalance int64, err error)
}

// QueryService defines read operations over the ledger.
type QueryService interface {
	Overview(ctx context.Context, userID uuid.UUID) (service.Overview, error)
	History(ctx context.Context, userID uuid.UUID, filter model.HistoryFilter) (service.HistoryPage, error)
}

// Credits handles HTTP endpoints for the credit balance and ledger.
type Credits struct {
	ledgerService LedgerService
	queryService  QueryService
	logger        *logger.Logger
}

// NewCredits creates a new Credits handler.
func NewCredits(ledgerService LedgerService, queryService QueryService, logger *logger.Logger) *Credits {
	return &Credits{
		ledgerService: ledgerService,
		queryService:  queryService,
		logger:        logger,
	}
}

// Overview returns the stored balance with recent transactions and
// all-time statistics.
func (h *Credits) Overview(c *fiber.Ctx) error {
	overview, err := h.queryService.Overview(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return ok(c, "credits retrieved", fiber.Map{
		"current_credits":     overview.Balance,
		"recent_transactions": marshalTransactions(overview.History),
		"statistics":          marshalStatistics(overview.Statistics),
	})
}

type useRequest struct {
	Amount      int64  `json:"amount"`
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
}

// Use debits credits for a consumed service.
func (h *Credits) Use(c *fiber.Ctx) error {
	var req useRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	description := req.Description
	if description == "" {
		description = req.ServiceType
	}

	newBalance, err := h.ledgerService.Debit(c.UserContext(), middleware.UserID(c), req.Amount, description, nil)
	if err != nil {
		return err
	}

	return ok(c, "credits used", fiber.Map{
		"credits_used":      req.Amount,
		"remaining_credits": newBalance,
	})
}

type addRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Add credits the balance.
func (h *Credits) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	description := req.Description
	if description == "" {
		description = req.Reason
	}

	newBalance, err := h.ledgerService.Credit(c.UserContext(), middleware.UserID(c), req.Amount, model.KindAdd, description, nil)
	if err != nil {
		return err
	}

	return ok(c, "credits added", fiber.Map{
		"added_credits": req.Amount,
		"new_credits":   newBalance,
	})
}

type updateRequest struct {
	CreditChange  int64  `json:"credit_change"`
	OperationType string `json:"operation_type"`
	Reason        string `json:"reason"`
}

// Update applies an administrative balance change.
func (h *Credits) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	oldBalance, newBalance, err := h.ledgerService.Update(c.UserContext(), middleware.UserID(c),
		req.CreditChange, req.OperationType, req.Reason)
	if err != nil {
		return err
	}

	return ok(c, "credits updated", fiber.Map{
		"operation":   req.OperationType,
		"old_credits": oldBalance,
		"new_credits": newBalance,
	})
}

type removeRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// Remove decrements the balance clamped at zero and reports how much
// was actually removed.
func (h *Credits) Remove(c *fiber.Ctx) error {
	var req removeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	newBalance, actualRemoved, err := h.ledgerService.Remove(c.UserContext(), middleware.UserID(c), req.Amount, req.Reason)
	if err != nil {
		return err
	}

	return ok(c, "credits removed", fiber.Map{
		"requested_amount": req.Amount,
		"actual_removed":   actualRemoved,
		"new_credits":      newBalance,
	})
}

// History returns one filtered, paginated page of the transaction log.
func (h *Credits) History(c *fiber.Ctx) error {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		return err
	}

	page, err := h.queryService.History(c.UserContext(), middleware.UserID(c), filter)
	if err != nil {
		return err
	}

	return ok(c, "history retrieved", fiber.Map{
		"history": marshalTransactions(page.History),
		"pagination": fiber.Map{
			"current_page":  page.Pagination.CurrentPage,
			"per_page":      page.Pagination.PerPage,
			"total_records": page.Pagination.TotalRecords,
			"total_pages":   page.Pagination.TotalPages,
		},
		"statistics": marshalStatistics(page.Statistics),
		"filters": fiber.Map{
			"type":      c.Query("type"),
			"date_from": c.Query("date_from"),
			"date_to":   c.Query("date_to"),
		},
	})
}

func parseHistoryFilter(c *fiber.Ctx) (model.HistoryFilter, error) {
	filter := model.HistoryFilter{
		Kind:  model.TransactionKind(c.Query("type")),
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", model.HistoryDefaultLimit),
	}

	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return model.HistoryFilter{}, fiber.NewError(fiber.StatusBadRequest, "date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}

	if raw := c.Query("date_to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return model.HistoryFilter{}, fiber.NewError(fiber.StatusBadRequest, "date_to must be YYYY-MM-DD")
		}
		// Inclusive day bound.
		to := parsed.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &to
	}

	return filter, nil
}
