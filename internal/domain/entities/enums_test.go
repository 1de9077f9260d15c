package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountCategoryIsDebitNormal(t *testing.T) {
	assert.True(t, CategoryAsset.IsDebitNormal())
	assert.True(t, CategoryExpense.IsDebitNormal())
	assert.False(t, CategoryLiability.IsDebitNormal())
	assert.False(t, CategoryEquity.IsDebitNormal())
	assert.False(t, CategoryRevenue.IsDebitNormal())
}

func TestEntryTypeOpposite(t *testing.T) {
	assert.Equal(t, EntryTypeCredit, EntryTypeDebit.Opposite())
	assert.Equal(t, EntryTypeDebit, EntryTypeCredit.Opposite())
}

func TestAccountStatusTransitions(t *testing.T) {
	tests := []struct {
		from    AccountStatus
		to      AccountStatus
		allowed bool
	}{
		{AccountStatusPending, AccountStatusActive, true},
		{AccountStatusPending, AccountStatusClosed, true},
		{AccountStatusPending, AccountStatusFrozen, false},
		{AccountStatusPending, AccountStatusBlocked, false},
		{AccountStatusActive, AccountStatusFrozen, true},
		{AccountStatusActive, AccountStatusBlocked, true},
		{AccountStatusActive, AccountStatusClosed, true},
		{AccountStatusActive, AccountStatusPending, false},
		{AccountStatusFrozen, AccountStatusActive, true},
		{AccountStatusFrozen, AccountStatusBlocked, true},
		{AccountStatusFrozen, AccountStatusClosed, false},
		{AccountStatusBlocked, AccountStatusClosed, true},
		{AccountStatusBlocked, AccountStatusActive, false},
		{AccountStatusBlocked, AccountStatusFrozen, false},
		{AccountStatusClosed, AccountStatusActive, false},
		{AccountStatusClosed, AccountStatusPending, false},
		{AccountStatusClosed, AccountStatusClosed, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestProductTypeLedgerCategory(t *testing.T) {
	for _, p := range []ProductType{ProductChecking, ProductSavings, ProductCredit, ProductPrepaid} {
		assert.Equal(t, CategoryLiability, p.LedgerCategory())
	}
}

func TestEnumValidation(t *testing.T) {
	assert.NoError(t, CategoryAsset.Validate())
	assert.Error(t, AccountCategory("BOGUS").Validate())
	assert.NoError(t, EntryTypeDebit.Validate())
	assert.Error(t, EntryType("SIDEWAYS").Validate())
	assert.NoError(t, ProductChecking.Validate())
	assert.Error(t, ProductType("MORTGAGE").Validate())
	assert.NoError(t, TransactionTypeDeposit.Validate())
	assert.Error(t, TransactionType("GIFT").Validate())
	assert.NoError(t, TransactionStatusCompleted.Validate())
	assert.Error(t, TransactionStatus("MAYBE").Validate())
	assert.NoError(t, AccountStatusActive.Validate())
	assert.Error(t, AccountStatus("DORMANT").Validate())
	assert.NoError(t, KYCStatusVerified.Validate())
	assert.Error(t, KYCStatus("UNKNOWN").Validate())
}
