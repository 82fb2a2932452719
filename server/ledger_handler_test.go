package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"boardbank/models"
	"boardbank/service"
)

func testTransaction(gameID string, txType models.TransactionType, from, to string, amount int64) *models.Transaction {
	record := &models.Transaction{
		ID:        1,
		GameID:    gameID,
		Type:      txType,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	if from != "" {
		record.From = &from
	}
	if to != "" {
		record.To = &to
	}
	return record
}

func TestLedgerHandler_Transfer(t *testing.T) {
	ts := newTestServer(t)
	uid := "uid-1"

	record := testTransaction("AB12CD", models.TransactionTypeTransfer, "p1", "p2", 300)
	ts.ledger.On("Transfer", mock.Anything, "AB12CD", "p1", "p2", int64(300)).Return(record, nil)

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/transfer", ts.token(t, uid), map[string]any{
		"from":   "p1",
		"to":     "p2",
		"amount": 300,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	tx := body["transaction"].(map[string]any)
	assert.Equal(t, "transfer", tx["type"])
	assert.Equal(t, float64(300), tx["amount"])
	ts.ledger.AssertExpectations(t)
}

func TestLedgerHandler_TransferMissingFields(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/transfer", ts.token(t, "uid-1"), map[string]any{
		"amount": 300,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	ts.ledger.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerHandler_TransferInsufficientFunds(t *testing.T) {
	ts := newTestServer(t)

	ts.ledger.On("Transfer", mock.Anything, "AB12CD", "p1", "p2", int64(5000)).
		Return(nil, service.ErrInsufficientFunds(1500, 5000))

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/transfer", ts.token(t, "uid-1"), map[string]any{
		"from":   "p1",
		"to":     "p2",
		"amount": 5000,
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(service.CodeInsufficientFunds), body["code"])
	assert.Equal(t, "amount", body["field"])
}

func TestLedgerHandler_TransferInvalidAmount(t *testing.T) {
	ts := newTestServer(t)

	ts.ledger.On("Transfer", mock.Anything, "AB12CD", "p1", "p2", int64(-5)).
		Return(nil, service.ErrInvalidAmount(-5))

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/transfer", ts.token(t, "uid-1"), map[string]any{
		"from":   "p1",
		"to":     "p2",
		"amount": -5,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(service.CodeInvalidAmount), body["code"])
}

func TestLedgerHandler_PayBank(t *testing.T) {
	ts := newTestServer(t)

	record := testTransaction("AB12CD", models.TransactionTypePayBank, "p1", models.AccountBank, 400)
	ts.ledger.On("PayToBank", mock.Anything, "AB12CD", "p1", int64(400)).Return(record, nil)

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/pay-bank", ts.token(t, "uid-1"), map[string]any{
		"playerId": "p1",
		"amount":   400,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	tx := body["transaction"].(map[string]any)
	assert.Equal(t, "payBank", tx["type"])
	assert.Equal(t, "bank", tx["to"])
}

func TestLedgerHandler_TakeBankInsufficient(t *testing.T) {
	ts := newTestServer(t)

	ts.ledger.On("TakeFromBank", mock.Anything, "AB12CD", "p1", int64(99999)).
		Return(nil, service.ErrBankInsufficient(10000, 99999))

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/take-bank", ts.token(t, "uid-1"), map[string]any{
		"playerId": "p1",
		"amount":   99999,
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(service.CodeBankInsufficient), body["code"])
}

func TestLedgerHandler_PayPot(t *testing.T) {
	ts := newTestServer(t)

	record := testTransaction("AB12CD", models.TransactionTypePayPot, "p1", models.AccountPot, 50)
	ts.ledger.On("PayToPot", mock.Anything, "AB12CD", "p1", int64(50)).Return(record, nil)

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/pay-pot", ts.token(t, "uid-1"), map[string]any{
		"playerId": "p1",
		"amount":   50,
	})

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLedgerHandler_TakePot(t *testing.T) {
	ts := newTestServer(t)

	record := testTransaction("AB12CD", models.TransactionTypeTakePot, models.AccountPot, "p1", 750)
	ts.ledger.On("TakeFromPot", mock.Anything, "AB12CD", "p1").Return(record, nil)

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/take-pot", ts.token(t, "uid-1"), map[string]any{
		"playerId": "p1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	tx := body["transaction"].(map[string]any)
	assert.Equal(t, float64(750), tx["amount"])
}

func TestLedgerHandler_TakePotEmpty(t *testing.T) {
	ts := newTestServer(t)

	ts.ledger.On("TakeFromPot", mock.Anything, "AB12CD", "p1").Return(nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/take-pot", ts.token(t, "uid-1"), map[string]any{
		"playerId": "p1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Nil(t, body["transaction"])
}

func TestLedgerHandler_StartBonus(t *testing.T) {
	ts := newTestServer(t)

	record := testTransaction("AB12CD", models.TransactionTypeStartBonus, "", "p1", 200)
	ts.ledger.On("GiveStartBonus", mock.Anything, "AB12CD", "p1", int64(0)).Return(record, nil)

	rec := ts.do(t, http.MethodPost, "/api/games/AB12CD/start-bonus", ts.token(t, "uid-1"), map[string]any{
		"playerId": "p1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	tx := body["transaction"].(map[string]any)
	assert.Equal(t, "startBonus", tx["type"])
	assert.Nil(t, tx["from"])
}

func TestLedgerHandler_Transactions(t *testing.T) {
	ts := newTestServer(t)

	records := []*models.Transaction{
		testTransaction("AB12CD", models.TransactionTypePayPot, "p1", models.AccountPot, 50),
		testTransaction("AB12CD", models.TransactionTypeTransfer, "p1", "p2", 300),
	}
	ts.ledger.On("Transactions", mock.Anything, "AB12CD", 50).Return(records, nil)

	rec := ts.do(t, http.MethodGet, "/api/games/AB12CD/transactions", ts.token(t, "uid-1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["transactions"], 2)
}

func TestLedgerHandler_TransactionsCustomLimit(t *testing.T) {
	ts := newTestServer(t)

	ts.ledger.On("Transactions", mock.Anything, "AB12CD", 5).Return([]*models.Transaction{}, nil)

	rec := ts.do(t, http.MethodGet, "/api/games/AB12CD/transactions?limit=5", ts.token(t, "uid-1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	ts.ledger.AssertExpectations(t)
}

func TestLedgerHandler_TransactionsBadLimit(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/games/AB12CD/transactions?limit=abc", ts.token(t, "uid-1"), nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	ts.ledger.AssertNotCalled(t, "Transactions", mock.Anything, mock.Anything, mock.Anything)
}
