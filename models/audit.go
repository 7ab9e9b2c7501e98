package models

import "github.com/octabyte/caisse-gommon/enums"

type CashierActivity struct {
	ID             uint64               `json:"id"`
	CaissierID     uint64               `json:"caissier_id"`
	CaissierNom    string               `json:"caissier_nom"`
	CaissierPrenom string               `json:"caissier_prenom"`
	Action         enums.ActivityAction `json:"action"`
	Description    string               `json:"description"`
	DateAction     string               `json:"date_action"`
	IPAddress      string               `json:"ip_address,omitempty"`
	Montant        *float64             `json:"montant,omitempty"`
	PaiementID     *uint64              `json:"paiement_id,omitempty"`
}

type CashierStats struct {
	CaissierID       uint64  `json:"caissier_id"`
	Nom              string  `json:"nom"`
	Prenom           string  `json:"prenom"`
	TotalPaiements   int     `json:"total_paiements"`
	MontantTotal     float64 `json:"montant_total"`
	DerniereActivite string  `json:"derniere_activite"`
	Status           string  `json:"status"`
}

type DeletionRequest struct {
	ID              uint64                      `json:"id"`
	PaiementID      uint64                      `json:"paiement_id"`
	DemandeurID     uint64                      `json:"demandeur_id"`
	DemandeurNom    string                      `json:"demandeur_nom"`
	DemandeurPrenom string                      `json:"demandeur_prenom"`
	DemandeurRole   string                      `json:"demandeur_role"`
	Justification   string                      `json:"justification"`
	Statut          enums.DeletionRequestStatus `json:"statut"`
	DateDemande     string                      `json:"date_demande"`
	DateTraitement  string                      `json:"date_traitement,omitempty"`
	TraitePar       *uint64                     `json:"traite_par,omitempty"`
	Paiement        Payment                     `json:"paiement"`
}

type ReviewDeletionRequest struct {
	Statut enums.DeletionRequestStatus `json:"statut" validate:"required,oneof=approuve refuse"`
}
