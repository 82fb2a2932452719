package server

import (
	"context"
	"net/http"
	"strconv"

	"boardbank/models"
	"boardbank/service"

	"github.com/gin-gonic/gin"
)

// defaultLogLimit bounds the transaction listing when the client does
// not ask for a specific page size.
const defaultLogLimit = 50

// LedgerHandler exposes the atomic money-movement operations
type LedgerHandler struct {
	ledger service.LedgerService
}

// NewLedgerHandler creates the ledger handler
func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type transferRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount int64  `json:"amount"`
}

type amountRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	Amount   int64  `json:"amount"`
}

type playerRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

type bonusRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	Bonus    int64  `json:"bonus"`
}

// Transfer moves money between two player accounts
func (h *LedgerHandler) Transfer(c *gin.Context) {
	gameID := c.Param("id")

	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.ledger.Transfer(c.Request.Context(), gameID, req.From, req.To, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": record})
}

// PayBank moves money from a player to the bank
func (h *LedgerHandler) PayBank(c *gin.Context) {
	h.playerAmountOp(c, h.ledger.PayToBank)
}

// TakeBank moves money from the bank to a player
func (h *LedgerHandler) TakeBank(c *gin.Context) {
	h.playerAmountOp(c, h.ledger.TakeFromBank)
}

// PayPot moves money from a player into the pot
func (h *LedgerHandler) PayPot(c *gin.Context) {
	h.playerAmountOp(c, h.ledger.PayToPot)
}

// TakePot drains the whole pot into the player's account. An empty pot
// yields a null transaction, not an error.
func (h *LedgerHandler) TakePot(c *gin.Context) {
	gameID := c.Param("id")

	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.ledger.TakeFromPot(c.Request.Context(), gameID, req.PlayerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": record})
}

// StartBonus credits the start salary to a player
func (h *LedgerHandler) StartBonus(c *gin.Context) {
	gameID := c.Param("id")

	var req bonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.ledger.GiveStartBonus(c.Request.Context(), gameID, req.PlayerID, req.Bonus)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": record})
}

// Transactions lists the game's log, newest first
func (h *LedgerHandler) Transactions(c *gin.Context) {
	gameID := c.Param("id")

	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.ledger.Transactions(c.Request.Context(), gameID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []*models.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": records})
}

// playerAmountOp runs one {playerId, amount} ledger operation
func (h *LedgerHandler) playerAmountOp(c *gin.Context, op func(ctx context.Context, gameID, playerID string, amount int64) (*models.Transaction, error)) {
	gameID := c.Param("id")

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := op(c.Request.Context(), gameID, req.PlayerID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": record})
}
