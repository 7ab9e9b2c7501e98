package models

import "github.com/octabyte/caisse-gommon/enums"

type Payment struct {
	ID             uint64            `json:"id"`
	Nom            string            `json:"nom"`
	Prenom         string            `json:"prenom"`
	Montant        float64           `json:"montant"`
	MontantLettres string            `json:"montant_lettres"`
	NumeroPolice   string            `json:"numero_police"`
	Date           string            `json:"date,omitempty"`
	DateCreation   string            `json:"date_creation,omitempty"`
	Caissier       string            `json:"caissier,omitempty"`
	ModePaiement   enums.PaymentMode `json:"mode_paiement"`
	NumeroPiece    string            `json:"numero_piece,omitempty"`
}

// CreatePaymentRequest is what a cashier submits. NumeroPiece carries the
// cheque number or the card terminal reference and is only required for those modes.
type CreatePaymentRequest struct {
	Nom            string            `json:"nom" validate:"required"`
	Prenom         string            `json:"prenom" validate:"required"`
	Montant        float64           `json:"montant" validate:"required,gt=0"`
	MontantLettres string            `json:"montant_lettres" validate:"required"`
	NumeroPolice   string            `json:"numero_police" validate:"required"`
	ModePaiement   enums.PaymentMode `json:"mode_paiement" validate:"required,oneof=espece tpe cheque"`
	NumeroPiece    string            `json:"numero_piece,omitempty"`
}

// PaymentPage is one page of the cashier's own payments.
type PaymentPage struct {
	Data        []Payment `json:"data"`
	CurrentPage int       `json:"current_page,omitempty"`
	LastPage    int       `json:"last_page,omitempty"`
	PerPage     int       `json:"per_page,omitempty"`
	Total       int       `json:"total,omitempty"`
}
