package service

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/tracker/internal/calculator"
	"github.com/mmynk/tracker/internal/models"
	"github.com/mmynk/tracker/internal/storage"
)

// SummaryService reports income and expense totals over a date range.
type SummaryService struct {
	transactions storage.Owned[models.Transaction]
	logger       *slog.Logger
}

func NewSummaryService(transactions storage.Owned[models.Transaction], logger *slog.Logger) *SummaryService {
	return &SummaryService{transactions: transactions, logger: logger}
}

// Summary handles GET /api/transactions/summary/?from=&to=.
func (s *SummaryService) Summary(c *gin.Context) {
	userID, ok := owner(c)
	if !ok {
		return
	}
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	txns, err := s.transactions.List(c.Request.Context(), userID, filter)
	if err != nil {
		fail(c, err)
		return
	}

	summary := calculator.Summarize(txns)
	s.logger.Debug("Transaction summary", "user_id", userID, "count", summary.Count)
	c.JSON(http.StatusOK, summary)
}
