package entities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPostRequest() *PostEntriesRequest {
	return &PostEntriesRequest{
		TransactionID: uuid.New(),
		Currency:      "USD",
		Entries: []PostEntryRequest{
			{AccountID: 1, EntryType: EntryTypeDebit, Amount: decimal.NewFromInt(100), Description: "cash in"},
			{AccountID: 2, EntryType: EntryTypeCredit, Amount: decimal.NewFromInt(100), Description: "cash in"},
		},
	}
}

func TestPostEntriesRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validPostRequest().Validate())
	})

	t.Run("missing transaction id", func(t *testing.T) {
		req := validPostRequest()
		req.TransactionID = uuid.Nil
		assert.Error(t, req.Validate())
	})

	t.Run("single entry rejected", func(t *testing.T) {
		req := validPostRequest()
		req.Entries = req.Entries[:1]
		assert.Error(t, req.Validate())
	})

	t.Run("all debits rejected", func(t *testing.T) {
		req := validPostRequest()
		req.Entries[1].EntryType = EntryTypeDebit
		assert.Error(t, req.Validate())
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		req := validPostRequest()
		req.Entries[0].Amount = decimal.Zero
		assert.Error(t, req.Validate())
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		req := validPostRequest()
		req.Entries[1].Amount = decimal.NewFromInt(-5)
		assert.Error(t, req.Validate())
	})

	t.Run("bad currency rejected", func(t *testing.T) {
		req := validPostRequest()
		req.Currency = "DOLLARS"
		assert.Error(t, req.Validate())
	})
}

func TestPostEntriesRequestTotals(t *testing.T) {
	req := &PostEntriesRequest{
		TransactionID: uuid.New(),
		Currency:      "USD",
		Entries: []PostEntryRequest{
			{AccountID: 1, EntryType: EntryTypeDebit, Amount: decimal.RequireFromString("60.25"), Description: "split"},
			{AccountID: 2, EntryType: EntryTypeDebit, Amount: decimal.RequireFromString("39.75"), Description: "split"},
			{AccountID: 3, EntryType: EntryTypeCredit, Amount: decimal.NewFromInt(100), Description: "split"},
		},
	}

	require.NoError(t, req.Validate())
	assert.True(t, req.DebitTotal().Equal(decimal.NewFromInt(100)))
	assert.True(t, req.CreditTotal().Equal(decimal.NewFromInt(100)))
}

func TestCreateLedgerAccountRequestDefaultsCurrency(t *testing.T) {
	req := &CreateLedgerAccountRequest{Code: "OPS-001", Name: "Operations", Category: CategoryExpense}
	require.NoError(t, req.Validate())
	assert.Equal(t, "USD", req.Currency)
}
