// Package orderstore applies command descriptors to the order tables in
// Postgres. It is the shipped OrderService implementation: domain-rule
// violations come back as BUSINESS results, malformed slots as VALIDATION
// results and infrastructure failures as SYSTEM results. No Go error ever
// crosses the Execute boundary.
package orderstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"drivethru-dialogue/internal/common/database"
	apperrors "drivethru-dialogue/internal/common/errors"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/models"
)

// Store executes order mutations. Stateless; all order state lives in
// Postgres keyed by the session's order ID.
type Store struct {
	db          *database.PostgresClient
	maxQuantity int
	logger      logger.Logger
}

func New(db *database.PostgresClient, maxQuantity int, log logger.Logger) *Store {
	return &Store{db: db, maxQuantity: maxQuantity, logger: log}
}

// Execute applies one descriptor. Failures are encoded in the result.
func (s *Store) Execute(ctx context.Context, d models.CommandDescriptor, sessCtx models.SessionContext) models.CommandResult {
	switch d.Intent {
	case models.IntentAddItem:
		return s.addItem(ctx, d, sessCtx)
	case models.IntentRemoveItem:
		return s.removeItem(ctx, d, sessCtx)
	case models.IntentModifyItem, models.IntentSetQuantity:
		return s.updateItem(ctx, d, sessCtx)
	case models.IntentClearOrder:
		return s.clearOrder(ctx, sessCtx)
	case models.IntentConfirmOrder:
		return s.confirmOrder(ctx, sessCtx)
	case models.IntentRepeat:
		return s.readOrder(ctx, sessCtx)
	case models.IntentQuestion:
		return s.answerQuestion(ctx, d, sessCtx)
	default:
		// SMALL_TALK and UNKNOWN have nothing to apply.
		return models.SuccessResult("nothing to do", nil)
	}
}

func (s *Store) addItem(ctx context.Context, d models.CommandDescriptor, sessCtx models.SessionContext) models.CommandResult {
	if d.IsAmbiguous() {
		// Success with markers: the aggregator turns this into a question.
		return models.SuccessResult("needs a choice", map[string]interface{}{
			models.DataResponseType:      models.ResponseTypeClarificationNeed,
			models.DataClarificationType: models.ClarificationTypeAmbiguousItem,
			models.DataRequestedItem:     stringSlot(d.Slots, models.SlotAmbiguousItem),
		})
	}

	itemID, ok := intSlot(d.Slots, models.SlotMenuItemID)
	if !ok || itemID <= 0 {
		return models.ErrorResult(apperrors.ErrCodeMissingRequiredField,
			"I couldn't tell which item you meant.",
			map[string]interface{}{models.DataRequestedItem: stringSlot(d.Slots, models.SlotRawInput)})
	}

	qty, ok := intSlot(d.Slots, models.SlotQuantity)
	if !ok {
		qty = 1
	}
	if qty <= 0 {
		return models.ErrorResult(apperrors.ErrCodeInvalidQuantity,
			"That quantity doesn't look right.", nil)
	}
	if qty > s.maxQuantity {
		stdErr := apperrors.NewQuantityExceedsLimitError(qty, s.maxQuantity)
		return models.ErrorResult(stdErr.Code, stdErr.Message,
			map[string]interface{}{models.DataQty: qty})
	}

	var name string
	var available bool
	err := s.db.QueryRow(ctx,
		`SELECT name, available FROM menu_items WHERE id = $1 AND restaurant_id = $2`,
		itemID, sessCtx.RestaurantID,
	).Scan(&name, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrorResult(apperrors.ErrCodeItemNotFound,
			"I couldn't find that item on our menu.",
			map[string]interface{}{models.DataRequestedItem: stringSlot(d.Slots, models.SlotRawInput)})
	}
	if err != nil {
		return s.systemFailure("menu lookup", err, sessCtx)
	}
	if !available {
		stdErr := apperrors.NewItemUnavailableError(name)
		return models.ErrorResult(stdErr.Code, stdErr.Message,
			map[string]interface{}{
				models.DataResponseType:  models.ResponseTypeItemUnavailable,
				models.DataRequestedItem: name,
			})
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO order_items (order_id, menu_item_id, item_name, quantity, size, special_instructions)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sessCtx.OrderID, itemID, name, qty,
		stringSlot(d.Slots, models.SlotSize),
		stringSlot(d.Slots, models.SlotSpecialInstructions),
	)
	if err != nil {
		return s.systemFailure("insert order item", err, sessCtx)
	}

	return models.SuccessResult(fmt.Sprintf("added %d x %s", qty, name), map[string]interface{}{
		models.DataItemName: name,
		models.DataQty:      qty,
	})
}

func (s *Store) removeItem(ctx context.Context, d models.CommandDescriptor, sessCtx models.SessionContext) models.CommandResult {
	query, args, err := targetQuery(
		`DELETE FROM order_items`, d.Slots, sessCtx.OrderID)
	if err != nil {
		s.logger.Debug("target resolution failed", map[string]interface{}{"error": err.Error()})
		return models.ErrorResult(apperrors.ErrCodeInvalidInputFormat,
			"I couldn't tell which item you meant.", nil)
	}

	result, execErr := s.db.Exec(ctx, query, args...)
	if execErr != nil {
		return s.systemFailure("remove order item", execErr, sessCtx)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return models.ErrorResult(apperrors.ErrCodeItemNotFound,
			"I couldn't find that item in your order.", nil)
	}

	return models.SuccessResult("removed item", map[string]interface{}{models.DataQty: int(affected)})
}

func (s *Store) updateItem(ctx context.Context, d models.CommandDescriptor, sessCtx models.SessionContext) models.CommandResult {
	qty, ok := intSlot(d.Slots, models.SlotQuantity)
	if d.Intent == models.IntentSetQuantity {
		if !ok {
			return models.ErrorResult(apperrors.ErrCodeMissingRequiredField,
				"I couldn't tell the new quantity.", nil)
		}
		if qty <= 0 {
			return models.ErrorResult(apperrors.ErrCodeInvalidQuantity,
				"That quantity doesn't look right.", nil)
		}
		if qty > s.maxQuantity {
			stdErr := apperrors.NewQuantityExceedsLimitError(qty, s.maxQuantity)
			return models.ErrorResult(stdErr.Code, stdErr.Message,
				map[string]interface{}{models.DataQty: qty})
		}
	}

	var setClause string
	var setArg interface{}
	if ok {
		setClause = "quantity = $2"
		setArg = qty
	} else {
		setClause = "special_instructions = $2"
		setArg = stringSlot(d.Slots, models.SlotSpecialInstructions)
	}

	query, args, err := targetQuery(
		fmt.Sprintf(`UPDATE order_items SET %s`, setClause), d.Slots, sessCtx.OrderID, setArg)
	if err != nil {
		s.logger.Debug("target resolution failed", map[string]interface{}{"error": err.Error()})
		return models.ErrorResult(apperrors.ErrCodeInvalidInputFormat,
			"I couldn't tell which item you meant.", nil)
	}

	result, execErr := s.db.Exec(ctx, query, args...)
	if execErr != nil {
		return s.systemFailure("update order item", execErr, sessCtx)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return models.ErrorResult(apperrors.ErrCodeItemNotFound,
			"I couldn't find that item in your order.", nil)
	}

	data := map[string]interface{}{}
	if ok {
		data[models.DataQty] = qty
	}
	return models.SuccessResult("updated item", data)
}

func (s *Store) clearOrder(ctx context.Context, sessCtx models.SessionContext) models.CommandResult {
	result, err := s.db.Exec(ctx,
		`DELETE FROM order_items WHERE order_id = $1`, sessCtx.OrderID)
	if err != nil {
		return s.systemFailure("clear order", err, sessCtx)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return models.ErrorResult(apperrors.ErrCodeNoActiveOrder,
			"You don't have an order yet.", nil)
	}
	return models.SuccessResult("order cleared", map[string]interface{}{models.DataQty: int(affected)})
}

func (s *Store) confirmOrder(ctx context.Context, sessCtx models.SessionContext) models.CommandResult {
	result, err := s.db.Exec(ctx,
		`UPDATE orders SET status = 'confirmed', confirmed_at = NOW() WHERE id = $1 AND status = 'open'`,
		sessCtx.OrderID)
	if err != nil {
		return s.systemFailure("confirm order", err, sessCtx)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return models.ErrorResult(apperrors.ErrCodeNoActiveOrder,
			"There's no open order to confirm.", nil)
	}
	return models.SuccessResult("order confirmed", map[string]interface{}{
		models.DataResponseType: models.ResponseTypeOrderConfirmed,
	})
}

func (s *Store) readOrder(ctx context.Context, sessCtx models.SessionContext) models.CommandResult {
	rows, err := s.db.Query(ctx,
		`SELECT item_name, quantity FROM order_items WHERE order_id = $1 ORDER BY id`,
		sessCtx.OrderID)
	if err != nil {
		return s.systemFailure("read order", err, sessCtx)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var name string
		var qty int
		if err := rows.Scan(&name, &qty); err != nil {
			return s.systemFailure("scan order line", err, sessCtx)
		}
		lines = append(lines, fmt.Sprintf("%d x %s", qty, name))
	}
	if err := rows.Err(); err != nil {
		return s.systemFailure("iterate order lines", err, sessCtx)
	}
	if len(lines) == 0 {
		return models.ErrorResult(apperrors.ErrCodeNoActiveOrder,
			"You don't have an order yet.", nil)
	}

	return models.SuccessResult("order read back", map[string]interface{}{
		"lines": lines,
	})
}

// answerQuestion resolves menu and pricing questions from the catalog.
// Unhandled categories succeed with the raw question so the dynamic
// response stage can answer from its own knowledge.
func (s *Store) answerQuestion(ctx context.Context, d models.CommandDescriptor, sessCtx models.SessionContext) models.CommandResult {
	category := stringSlot(d.Slots, models.SlotCategory)
	if category != "pricing" && category != "menu" {
		return models.SuccessResult("question noted", map[string]interface{}{
			models.SlotQuestion: stringSlot(d.Slots, models.SlotQuestion),
			models.SlotCategory: category,
		})
	}

	rows, err := s.db.Query(ctx,
		`SELECT name, price FROM menu_items WHERE restaurant_id = $1 AND available ORDER BY name LIMIT 25`,
		sessCtx.RestaurantID)
	if err != nil {
		return s.systemFailure("menu question lookup", err, sessCtx)
	}
	defer rows.Close()

	items := make([]map[string]interface{}, 0, 25)
	for rows.Next() {
		var name string
		var price float64
		if err := rows.Scan(&name, &price); err != nil {
			return s.systemFailure("scan menu item", err, sessCtx)
		}
		items = append(items, map[string]interface{}{"name": name, "price": price})
	}
	if err := rows.Err(); err != nil {
		return s.systemFailure("iterate menu items", err, sessCtx)
	}

	return models.SuccessResult("menu answered", map[string]interface{}{
		"menu_items":        items,
		models.SlotCategory: category,
	})
}

func (s *Store) systemFailure(operation string, err error, sessCtx models.SessionContext) models.CommandResult {
	stdErr := apperrors.NewDatabaseError(err)
	s.logger.WithError(stdErr).Error("order store failure", map[string]interface{}{
		"operation":  operation,
		"session_id": sessCtx.SessionID,
		"retryable":  stdErr.Retryable,
	})
	return models.SystemErrorResult(stdErr.Code, fmt.Sprintf("%s: %s", operation, stdErr.Details))
}

// targetQuery appends the WHERE clause that resolves a line target: an
// explicit menu_item_id slot, a "line:N" reference (1-based position), or
// "last_item". extraArgs occupy placeholders after the order ID.
func targetQuery(prefix string, slots map[string]interface{}, orderID string, extraArgs ...interface{}) (string, []interface{}, error) {
	args := append([]interface{}{orderID}, extraArgs...)
	next := len(args) + 1

	if itemID, ok := intSlot(slots, models.SlotMenuItemID); ok && itemID > 0 {
		query := fmt.Sprintf("%s WHERE order_id = $1 AND menu_item_id = $%d", prefix, next)
		return query, append(args, itemID), nil
	}

	ref := stringSlot(slots, models.SlotTargetRef)
	switch {
	case ref == "" || ref == "last_item":
		query := fmt.Sprintf(
			"%s WHERE id = (SELECT id FROM order_items WHERE order_id = $1 ORDER BY id DESC LIMIT 1)", prefix)
		return query, args, nil
	case strings.HasPrefix(ref, "line:"):
		n, err := strconv.Atoi(strings.TrimPrefix(ref, "line:"))
		if err != nil || n <= 0 {
			return "", nil, fmt.Errorf("line reference %q is not a positive number", ref)
		}
		query := fmt.Sprintf(
			"%s WHERE id = (SELECT id FROM order_items WHERE order_id = $1 ORDER BY id LIMIT 1 OFFSET $%d)", prefix, next)
		return query, append(args, n-1), nil
	default:
		return "", nil, fmt.Errorf("unrecognized target reference %q", ref)
	}
}

func intSlot(slots map[string]interface{}, key string) (int, bool) {
	if slots == nil {
		return 0, false
	}
	switch v := slots[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func stringSlot(slots map[string]interface{}, key string) string {
	if slots == nil {
		return ""
	}
	if v, ok := slots[key].(string); ok {
		return v
	}
	return ""
}
