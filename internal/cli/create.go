package cli

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmribeiro/recibox/internal/services"
)

// Create prompts for the fields of a new receipt and hands them to the
// document service. The result is always settled: either synced with a
// canonical number, or kept locally with a provisional one.
func (a *App) Create(ctx context.Context) error {
	payerName, err := GetSimpleText(a.reader, "Payer name", os.Stdout)
	if err != nil {
		return err
	}
	payerDocument, err := GetSimpleText(a.reader, "Payer document (CPF/CNPJ, optional)", os.Stdout)
	if err != nil {
		return err
	}
	amountText, err := GetSimpleText(a.reader, "Amount", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		printlnFn("Invalid amount:", amountText)
		return err
	}
	description, err := GetSimpleText(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}
	method, err := GetSimpleText(a.reader, "Payment method (empty for default)", os.Stdout)
	if err != nil {
		return err
	}
	if method == "" {
		method = a.config.DefaultPaymentMethod
	}

	doc, err := a.documents.Create(ctx, services.CreateInput{
		PayerName:     payerName,
		PayerDocument: payerDocument,
		Amount:        amount,
		IssueDate:     time.Now(),
		Description:   description,
		PaymentMethod: method,
	})
	if err != nil {
		a.logger.Error(ctx, "error creating document", "error", err)
		return err
	}

	if doc.Pending {
		printlnFn("Created locally, not yet synced:", doc.SequenceLabel)
	} else {
		printlnFn("Created:", doc.SequenceLabel)
	}
	return nil
}
