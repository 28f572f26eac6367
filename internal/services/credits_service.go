package services

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/internal/middleware"
	"github.com/adstudio/backend/internal/models"
)

// CreditsResponse is the credit summary for the signed-in user
// @Description Credit balance and optional transaction history
type CreditsResponse struct {
	Credits      int64                      `json:"credits" example:"97"`
	Transactions []models.CreditTransaction `json:"transactions,omitempty"`
}

type CreditsService struct {
	ledger *CreditsLedger
	logger logrus.FieldLogger
}

func NewCreditsService(ledger *CreditsLedger, logger logrus.FieldLogger) *CreditsService {
	return &CreditsService{ledger: ledger, logger: logger}
}

// GetCredits returns the caller's balance, provisioning the welcome bonus on first use
// @Summary Get credit balance
// @Description Returns the authenticated user's credits and, optionally, their newest transactions
// @Tags credits
// @Produce json
// @Security BearerAuth
// @Param includeHistory query bool false "Include transaction history"
// @Param limit query int false "History page size (1-100, default 50)"
// @Success 200 {object} CreditsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /credits [get]
func (s *CreditsService) GetCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	log := s.logger.WithField("user_id", userID)

	balance, err := s.ledger.ProvisionedBalance(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch credit balance")
		SendErrorResponse(w, "Failed to fetch credit information", http.StatusInternalServerError, nil)
		return
	}

	resp := CreditsResponse{Credits: balance}

	if r.URL.Query().Get("includeHistory") == "true" {
		// unparseable limits fall back to the default page size
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		history, err := s.ledger.History(r.Context(), userID, limit)
		if err != nil {
			log.WithError(err).Error("Failed to fetch credit history")
			SendErrorResponse(w, "Failed to fetch credit information", http.StatusInternalServerError, nil)
			return
		}
		resp.Transactions = history
	}

	writeJSON(w, http.StatusOK, resp)
}
