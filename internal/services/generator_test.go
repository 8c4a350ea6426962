package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmribeiro/recibox/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func recurringContract(id string, dayOfMonth int) models.Contract {
	return models.Contract{
		Id:                   id,
		RecurrenceEnabled:    true,
		RecurrenceDayOfMonth: dayOfMonth,
		MonthlyAmount:        decimal.RequireFromString("500"),
		PayerName:            "Acme Ltda",
		PayerDocument:        "12.345.678/0001-00",
		Description:          "Mensalidade",
		SignatureRef:         "sig-1",
	}
}

func TestGenerate_BasicScenario(t *testing.T) {
	today := day(2025, time.January, 10)
	contracts := []models.Contract{recurringContract("C1", 15)}

	got := Generate(today, contracts, nil, GeneratorOptions{DefaultPaymentMethod: "pix"})

	require.Len(t, got, 1)
	d := got[0]
	assert.NotEmpty(t, d.Id)
	assert.Equal(t, day(2025, time.January, 15), d.IssueDate)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, models.StatusIssued, d.Status)
	assert.Equal(t, "C1", d.ContractId)
	assert.Equal(t, "Acme Ltda", d.PayerName)
	assert.Equal(t, "pix", d.PaymentMethod)
	assert.Equal(t, "sig-1", d.SignatureRef)
	assert.Equal(t, "REC-202501-C1", d.SequenceLabel)
	assert.True(t, d.Pending)
}

func TestGenerate_WindowBoundaries(t *testing.T) {
	today := day(2025, time.March, 10)

	tests := []struct {
		name       string
		dayOfMonth int
		want       int
	}{
		{"target is today", 10, 1},
		{"ten days ahead, inclusive edge", 20, 1},
		{"eleven days ahead, outside window", 21, 0},
		{"one day in the past", 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contracts := []models.Contract{recurringContract("C1", tt.dayOfMonth)}
			got := Generate(today, contracts, nil, GeneratorOptions{})
			assert.Len(t, got, tt.want)
		})
	}
}

func TestGenerate_WindowImmuneToDSTTransitions(t *testing.T) {
	// US clocks spring forward on 2025-03-09, shaving an hour off every
	// interval that spans it; the window must count calendar days anyway
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name       string
		today      time.Time
		dayOfMonth int
		want       int
	}{
		{"eleven days ahead across spring-forward", time.Date(2025, time.March, 1, 0, 0, 0, 0, ny), 12, 0},
		{"ten days ahead across spring-forward", time.Date(2025, time.March, 1, 0, 0, 0, 0, ny), 11, 1},
		{"one day in the past across spring-forward", time.Date(2025, time.March, 10, 0, 0, 0, 0, ny), 9, 0},
		{"one day in the past across fall-back", time.Date(2025, time.November, 3, 0, 0, 0, 0, ny), 2, 0},
		{"ten days ahead across fall-back", time.Date(2025, time.November, 1, 0, 0, 0, 0, ny), 11, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contracts := []models.Contract{recurringContract("C1", tt.dayOfMonth)}
			got := Generate(tt.today, contracts, nil, GeneratorOptions{})
			assert.Len(t, got, tt.want)
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	today := day(2025, time.January, 10)
	contracts := []models.Contract{recurringContract("C1", 15)}

	first := Generate(today, contracts, nil, GeneratorOptions{})
	require.Len(t, first, 1)

	// caller merges the previous output before calling again
	second := Generate(today, contracts, first, GeneratorOptions{})
	assert.Empty(t, second)

	// also on a later day within the same month and window
	third := Generate(day(2025, time.January, 11), contracts, first, GeneratorOptions{})
	assert.Empty(t, third)
}

func TestGenerate_DedupByContractAndMonthNotDay(t *testing.T) {
	today := day(2025, time.January, 10)
	contracts := []models.Contract{recurringContract("C1", 15)}

	// an existing document for the same contract earlier the same month,
	// on a different day, still suppresses generation
	existing := []models.Document{{
		Id:         "x",
		ContractId: "C1",
		IssueDate:  day(2025, time.January, 2),
	}}

	got := Generate(today, contracts, existing, GeneratorOptions{})
	assert.Empty(t, got)
}

func TestGenerate_SkipsIneligibleContracts(t *testing.T) {
	today := day(2025, time.January, 10)

	disabled := recurringContract("C1", 15)
	disabled.RecurrenceEnabled = false

	badDayLow := recurringContract("C2", 0)
	badDayHigh := recurringContract("C3", 29)

	got := Generate(today, []models.Contract{disabled, badDayLow, badDayHigh}, nil, GeneratorOptions{})
	assert.Empty(t, got)
}

func TestGenerate_OtherContractSameMonthStillGenerates(t *testing.T) {
	today := day(2025, time.January, 10)
	contracts := []models.Contract{
		recurringContract("C1", 15),
		recurringContract("C2", 12),
	}

	existing := []models.Document{{
		Id:         "x",
		ContractId: "C1",
		IssueDate:  day(2025, time.January, 15),
	}}

	got := Generate(today, contracts, existing, GeneratorOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, "C2", got[0].ContractId)
}

func TestGenerate_FreshIdsEveryCall(t *testing.T) {
	today := day(2025, time.January, 10)
	contracts := []models.Contract{recurringContract("C1", 15)}

	a := Generate(today, contracts, nil, GeneratorOptions{})
	b := Generate(today, contracts, nil, GeneratorOptions{})
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].Id, b[0].Id)
}
