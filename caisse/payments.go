package caisse

import (
	"errors"
	"strings"

	"github.com/octabyte/caisse-gommon/apierror"
	"github.com/octabyte/caisse-gommon/enums"
	"github.com/octabyte/caisse-gommon/models"
	"github.com/octabyte/caisse-gommon/utils"
)

const (
	MessageAllFieldsRequired = "Tous les champs sont obligatoires"
	MessageAmountPositive    = "Le montant doit être supérieur à 0"
)

// ValidatePayment runs the cashier form checks in the order the form makes
// them and returns the first failure as *apierror.ValidationError.
func ValidatePayment(req models.CreatePaymentRequest) error {
	trimmed := req
	trimmed.Nom = strings.TrimSpace(req.Nom)
	trimmed.Prenom = strings.TrimSpace(req.Prenom)
	trimmed.MontantLettres = strings.TrimSpace(req.MontantLettres)
	trimmed.NumeroPolice = strings.TrimSpace(req.NumeroPolice)
	// the amount is checked separately below
	if trimmed.Montant <= 0 {
		trimmed.Montant = 1
	}

	if err := utils.ValidatePayload(trimmed); err != nil {
		var validationErr *apierror.ValidationError
		if errors.As(err, &validationErr) {
			validationErr.Message = MessageAllFieldsRequired
		}
		return err
	}

	if req.ModePaiement.RequiresPieceNumber() && strings.TrimSpace(req.NumeroPiece) == "" {
		return &apierror.ValidationError{
			Message: "Le numéro de " + pieceLabel(req.ModePaiement) + " est obligatoire",
			Fields:  map[string][]string{"numero_piece": {"required"}},
		}
	}

	if req.Montant <= 0 {
		return &apierror.ValidationError{
			Message: MessageAmountPositive,
			Fields:  map[string][]string{"montant": {"gt"}},
		}
	}

	return nil
}

func pieceLabel(mode enums.PaymentMode) string {
	if mode == enums.PaymentModeCheque {
		return "chèque"
	}
	return "référence TPE"
}

// FilterPayments keeps the payments whose nom, prenom or numero_police
// contains term, ignoring case. An empty term keeps everything.
func FilterPayments(payments []models.Payment, term string) []models.Payment {
	term = strings.TrimSpace(term)
	if term == "" {
		return payments
	}

	filtered := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if utils.ContainsFold(p.Nom, term) || utils.ContainsFold(p.Prenom, term) || utils.ContainsFold(p.NumeroPolice, term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
