package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/handlers"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/logger"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/repository"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/repository/postgres"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/lead"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/zoho"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/testutil"
)

// Zoho endpoints the server under test should talk to,
// httptest fakes in practice
type ZohoEndpoints struct {
	AccountsURL string
	CRMURL      string
}

// Create db transaction and run the whole service stack on that connection.
// The transaction is passed to the inner function, so the database stays
// clean when the test stops.
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, endpoints ZohoEndpoints, fn func(tx pgx.Tx, srvURL string, storage repository.Storage)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		broker := zoho.NewTokenBroker(zoho.Config{
			RefreshToken: "refresh-secret",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			AccountsURL:  endpoints.AccountsURL,
		}, nil)
		crm := zoho.NewClient(endpoints.CRMURL, "Leads", broker, nil)

		leadService := lead.NewService(storage, crm, nil)
		leadHandler := handlers.NewLead(leadService, nil, nil)

		router := handlers.NewRouter(leadHandler, logger.NewNoOpLogger())

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, storage)
	})
}
