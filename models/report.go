package models

type ModeTotals struct {
	TPE    float64 `json:"tpe"`
	Espece float64 `json:"espece"`
	Cheque float64 `json:"cheque"`
}

type DailyReport struct {
	Date                string      `json:"date"`
	TotalCredits        float64     `json:"total_credits"`
	TotalDebits         float64     `json:"total_debits"`
	TotalTransactions   int         `json:"total_transactions"`
	SoldeTotal          float64     `json:"solde_total"`
	TransactionsParMode *ModeTotals `json:"transactions_par_mode,omitempty"`
}

type MonthlyReport struct {
	Month               string      `json:"month"`
	Year                int         `json:"year"`
	TotalCredits        float64     `json:"total_credits"`
	TotalDebits         float64     `json:"total_debits"`
	TotalTransactions   int         `json:"total_transactions"`
	ClientsActifs       int         `json:"clients_actifs"`
	TransactionsParMode *ModeTotals `json:"transactions_par_mode,omitempty"`
}
