package client

import (
	"context"
	"net/http"

	"github.com/splitkaro/bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// AddExpense records an expense in every group listed in the request.
func (c *Client) AddExpense(ctx context.Context, bearer string, req domain.AddExpenseRequest) error {
	ctx, span := tracer.Start(ctx, "Client.AddExpense")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("expense.amount", req.Amount),
		attribute.Int("expense.groups", len(req.GroupCodes)),
	)

	_, err := c.send(ctx, http.MethodPost, "/pg/addExpenseToGroups", bearer, map[string]any{
		"amount":      req.Amount,
		"description": req.Description,
		"paymentDate": req.PaymentDate,
		"tags":        req.Tags,
		"groupCodes":  req.GroupCodes,
	})
	return err
}

// DeleteExpense removes an expense by its identifier. Upstream reports
// failures in a JSON body with a message field, which mapStatus preserves.
func (c *Client) DeleteExpense(ctx context.Context, bearer, expenseID string) error {
	ctx, span := tracer.Start(ctx, "Client.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", expenseID))

	_, err := c.send(ctx, http.MethodDelete, "/pg/delete/expense/"+expenseID, bearer, nil)
	return err
}
