package enums

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "espece"
	PaymentModeCard   PaymentMode = "tpe"
	PaymentModeCheque PaymentMode = "cheque"

	// PaymentModeAll is the report filter meaning "every mode"; it is never sent.
	PaymentModeAll PaymentMode = "tous"
)

// RequiresPieceNumber reports whether a payment in this mode needs a cheque
// number or a card terminal reference.
func (m PaymentMode) RequiresPieceNumber() bool {
	return m == PaymentModeCheque || m == PaymentModeCard
}

func (m PaymentMode) Label() string {
	switch m {
	case PaymentModeCard:
		return "TPE (Carte bancaire)"
	case PaymentModeCash:
		return "Espèce"
	case PaymentModeCheque:
		return "Chèque"
	default:
		return "Tous les modes"
	}
}
