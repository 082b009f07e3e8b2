package model_test

import (
	"testing"
	"time"

	"github.com/maeulmarket/server/model"
	"github.com/maeulmarket/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// Account
	acc := &model.Account{Username: "test_user", PasswordHash: "hash", Balance: 10000, Status: 1}
	require.NoError(t, db.Create(acc).Error)
	assert.Greater(t, acc.ID, int64(0))

	var found model.Account
	require.NoError(t, db.First(&found, acc.ID).Error)
	assert.Equal(t, "test_user", found.Username)
	assert.Equal(t, int64(10000), found.Balance)

	// Listing
	lst := &model.Listing{Name: "빈티지 헤드폰", Category: "전자기기", BasePrice: 45000, Stock: 3}
	require.NoError(t, db.Create(lst).Error)
	assert.Greater(t, lst.ID, int64(0))

	// OwnedItem
	now := time.Now()
	owned := &model.OwnedItem{
		ID:           "11111111-2222-3333-4444-555555555555",
		AccountID:    acc.ID,
		OriginalID:   &lst.ID,
		Name:         lst.Name,
		Category:     lst.Category,
		BasePrice:    lst.BasePrice,
		PurchaseTime: &now,
	}
	require.NoError(t, db.Create(owned).Error)

	var items []model.OwnedItem
	require.NoError(t, db.Where("account_id = ?", acc.ID).Find(&items).Error)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].OriginalID)
	assert.Equal(t, lst.ID, *items[0].OriginalID)

	// AuditLog
	al := &model.AuditLog{TraceID: "trace-001", Action: "login", CreatedAt: time.Now()}
	require.NoError(t, db.Create(al).Error)
}

func TestAccount_Banned(t *testing.T) {
	assert.True(t, (&model.Account{Status: 0}).Banned())
	assert.False(t, (&model.Account{Status: 1}).Banned())
}
