package enums

type ActivityAction string

const (
	ActivityLogin           ActivityAction = "login"
	ActivityLogout          ActivityAction = "logout"
	ActivityPaymentCreated  ActivityAction = "paiement_cree"
	ActivityPaymentModified ActivityAction = "paiement_modifie"
	ActivityPaymentDeleted  ActivityAction = "paiement_supprime"

	// ActivityAll disables the action filter.
	ActivityAll ActivityAction = "tous"
)

type DeletionRequestStatus string

const (
	DeletionRequestPending  DeletionRequestStatus = "en_attente"
	DeletionRequestApproved DeletionRequestStatus = "approuve"
	DeletionRequestRefused  DeletionRequestStatus = "refuse"
)
