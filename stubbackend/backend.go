// Package stubbackend is an in-memory stand-in for the Caisse REST API. It
// serves the same routes and error bodies as the real backend and is used by
// tests and by cmd/caisse-stub.
package stubbackend

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/octabyte/caisse-gommon/enums"
	"github.com/octabyte/caisse-gommon/interfaces/http/echo/middleware"
	"github.com/octabyte/caisse-gommon/models"
	"go.opentelemetry.io/otel/trace"
)

type account struct {
	user     models.User
	password string
}

type payment struct {
	models.Payment
	cashierID uint64
}

// Backend holds every resource in memory. Tokens are issued as T1, T2, ...
type Backend struct {
	mu               sync.Mutex
	accounts         map[uint64]*account
	tokens           map[string]uint64
	clients          map[uint64]models.Client
	payments         []*payment
	activities       []models.CashierActivity
	deletionRequests []*models.DeletionRequest
	nextID           uint64
	nextToken        uint64
	calls            map[string]int
	lastAuth         string
	lastTraceID      string

	now  func() time.Time
	echo *echo.Echo
}

type Option func(*Backend)

// WithClock replaces time.Now for dates written by the backend.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

func WithLogLevel(level log.Lvl) Option {
	return func(b *Backend) {
		b.echo.Logger.SetLevel(level)
	}
}

func New(opts ...Option) *Backend {
	b := &Backend{
		accounts: make(map[uint64]*account),
		tokens:   make(map[string]uint64),
		clients:  make(map[uint64]models.Client),
		calls:    make(map[string]int),
		now:      time.Now,
		echo:     echo.New(),
	}
	b.echo.HideBanner = true
	b.echo.HidePort = true
	b.echo.Logger.SetLevel(log.WARN)

	for _, opt := range opts {
		opt(b)
	}

	b.routes()
	return b
}

// Handler serves the API under /api.
func (b *Backend) Handler() http.Handler {
	return b.echo
}

func (b *Backend) Start(address string) error {
	return b.echo.Start(address)
}

// AddUser stores an account and returns the user with its assigned ID.
func (b *Backend) AddUser(user models.User, password string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	user.ID = b.nextID
	if user.DateCreation == "" {
		user.DateCreation = b.now().UTC().Format(time.RFC3339)
	}
	b.accounts[user.ID] = &account{user: user, password: password}
	return user
}

func (b *Backend) AddClient(client models.Client) models.Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	client.ID = b.nextID
	b.clients[client.ID] = client
	return client
}

// AddPayment records p as made by cashierID, dated now unless p.Date is set.
func (b *Backend) AddPayment(cashierID uint64, p models.Payment) models.Payment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addPaymentLocked(cashierID, p).Payment
}

// AddDeletionRequest files a request by requesterID to delete paymentID.
func (b *Backend) AddDeletionRequest(requesterID, paymentID uint64, justification string) models.DeletionRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	requester := b.accounts[requesterID]
	req := &models.DeletionRequest{
		ID:            b.nextID,
		PaiementID:    paymentID,
		DemandeurID:   requesterID,
		Justification: justification,
		Statut:        enums.DeletionRequestPending,
		DateDemande:   b.now().UTC().Format(time.RFC3339),
	}
	if requester != nil {
		req.DemandeurNom = requester.user.Nom
		req.DemandeurPrenom = requester.user.Prenom
		req.DemandeurRole = string(requester.user.Role)
	}
	if p := b.findPaymentLocked(paymentID); p != nil {
		req.Paiement = p.Payment
	}
	b.deletionRequests = append(b.deletionRequests, req)
	return *req
}

// RevokeTokens invalidates every issued token, as a backend restart or a
// session purge would.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	b.tokens = make(map[string]uint64)
	b.mu.Unlock()
}

// Calls counts requests received for method and path, path being relative to
// /api (e.g. "auth/logout").
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

// LastAuthorization is the Authorization header of the last request received.
func (b *Backend) LastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

// LastTraceID is the trace ID propagated by the last request, empty when it
// carried none.
func (b *Backend) LastTraceID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastTraceID
}

func (b *Backend) Payments() []models.Payment {
	b.mu.Lock()
	defer b.mu.Unlock()

	payments := make([]models.Payment, 0, len(b.payments))
	for _, p := range b.payments {
		payments = append(payments, p.Payment)
	}
	return payments
}

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := strings.TrimPrefix(c.Request().URL.Path, "/api/")
		b.mu.Lock()
		b.calls[c.Request().Method+" "+path]++
		b.lastAuth = c.Request().Header.Get(middleware.Authorization)
		b.lastTraceID = ""
		if sc := trace.SpanContextFromContext(c.Request().Context()); sc.IsValid() {
			b.lastTraceID = sc.TraceID().String()
		}
		b.mu.Unlock()
		return next(c)
	}
}

func (b *Backend) resolve(token string) (models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.tokens[token]
	if !ok {
		return models.User{}, false
	}
	acc, ok := b.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

func (b *Backend) issueTokenLocked(userID uint64) string {
	b.nextToken++
	token := fmt.Sprintf("T%d", b.nextToken)
	b.tokens[token] = userID
	return token
}

func (b *Backend) addPaymentLocked(cashierID uint64, p models.Payment) *payment {
	b.nextID++
	p.ID = b.nextID
	now := b.now()
	if p.Date == "" {
		p.Date = now.Format("2006-01-02")
	}
	if p.DateCreation == "" {
		p.DateCreation = now.UTC().Format(time.RFC3339)
	}
	if cashier, ok := b.accounts[cashierID]; ok && p.Caissier == "" {
		p.Caissier = cashier.user.FullName()
	}

	stored := &payment{Payment: p, cashierID: cashierID}
	b.payments = append(b.payments, stored)
	return stored
}

func (b *Backend) findPaymentLocked(id uint64) *payment {
	for _, p := range b.payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (b *Backend) logActivityLocked(user models.User, action enums.ActivityAction, description string, p *models.Payment) {
	if user.Role != enums.RoleCashier {
		return
	}

	b.nextID++
	activity := models.CashierActivity{
		ID:             b.nextID,
		CaissierID:     user.ID,
		CaissierNom:    user.Nom,
		CaissierPrenom: user.Prenom,
		Action:         action,
		Description:    description,
		DateAction:     b.now().Format("2006-01-02 15:04:05"),
	}
	if p != nil {
		montant, id := p.Montant, p.ID
		activity.Montant = &montant
		activity.PaiementID = &id
	}
	b.activities = append(b.activities, activity)
}

func sortedPayments(payments []*payment) []*payment {
	sorted := append([]*payment(nil), payments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}

func sortClients(clients []models.Client) {
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].ID < clients[j].ID
	})
}

func sortStats(stats []models.CashierStats) {
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].CaissierID < stats[j].CaissierID
	})
}
