// Package integration exercises the full stack against a real PostgreSQL
// instance started with testcontainers. Run with -short to skip.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	httpadapter "github.com/quotewall/quotewall/internal/adapters/http"
	"github.com/quotewall/quotewall/internal/adapters/http/handlers"
	pgadapter "github.com/quotewall/quotewall/internal/adapters/postgres"
	"github.com/quotewall/quotewall/internal/app"
	"github.com/quotewall/quotewall/internal/platform/config"
	"github.com/quotewall/quotewall/internal/ports"
)

const jwtTestSecret = "integration-test-secret"

type testApp struct {
	db     *sql.DB
	store  *pgadapter.Store
	server *httptest.Server
	client *http.Client

	quotes *pgadapter.QuoteRepository
	votes  *pgadapter.VoteRepository
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("quotewall_test"),
		tcpostgres.WithUsername("quotewall"),
		tcpostgres.WithPassword("quotewall"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)

	store := pgadapter.NewStore(db)
	require.NoError(t, store.Migrate(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	quoteRepo := pgadapter.NewQuoteRepository(store)
	voteRepo := pgadapter.NewVoteRepository(store)
	userRepo := pgadapter.NewUserRepository(store)
	tokenRepo := pgadapter.NewTokenRepository(store)
	ledger := pgadapter.NewVoteLedger(store)

	quoteService := app.NewQuoteService(app.QuoteServiceConfig{Quotes: quoteRepo, Logger: logger})
	voteService := app.NewVoteService(app.VoteServiceConfig{Ledger: ledger, Logger: logger})
	authService := app.NewAuthService(app.AuthServiceConfig{
		Users:      userRepo,
		Tokens:     tokenRepo,
		JWTSecret:  jwtTestSecret,
		Issuer:     "quotewall",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Logger:     logger,
	})

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        logger,
		AppConfig:     &config.AppConfig{Name: "quotewall", Environment: "test", Version: "test"},
		AuthConfig:    &config.AuthConfig{Enabled: true},
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		QuoteHandler:  handlers.NewQuoteHandler(quoteService),
		VoteHandler:   handlers.NewVoteHandler(voteService),
		AuthHandler:   handlers.NewAuthHandler(authService),
		TokenParser:   authService,
		Timeout:       30 * time.Second,
	})

	server := httptest.NewServer(engine)

	t.Cleanup(func() {
		server.Close()

		if err := db.Close(); err != nil {
			t.Logf("closing database: %v", err)
		}

		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	return &testApp{
		db:     db,
		store:  store,
		server: server,
		client: server.Client(),
		quotes: quoteRepo,
		votes:  voteRepo,
	}
}

// request performs an HTTP call against the test server and returns the
// status code and response body. An empty token leaves the request anonymous.
func (a *testApp) request(t *testing.T, method, path, token, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

// registerAndLogin creates an account and returns its access token.
func (a *testApp) registerAndLogin(t *testing.T, name, email string) string {
	t.Helper()

	payload := map[string]string{
		"name":     name,
		"email":    email,
		"password": "correct-horse-battery",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	status, _ := a.request(t, http.MethodPost, "/api/v1/auth/register", "", string(body))
	require.Equal(t, http.StatusCreated, status)

	login, err := json.Marshal(map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
	})
	require.NoError(t, err)

	status, data := a.request(t, http.MethodPost, "/api/v1/auth/login", "", string(login))
	require.Equal(t, http.StatusOK, status)

	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	return tokens.AccessToken
}

// createQuote posts a quote and returns its ID.
func (a *testApp) createQuote(t *testing.T, token, content, author string, tags []string) string {
	t.Helper()

	payload := map[string]any{
		"content": content,
		"author":  author,
	}
	if tags != nil {
		payload["tags"] = tags
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	status, data := a.request(t, http.MethodPost, "/api/v1/quotes", token, string(body))
	require.Equal(t, http.StatusCreated, status)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	require.NotEmpty(t, resp.ID)

	return resp.ID
}

// storedCounters reads the denormalized counters straight from the quote row.
func (a *testApp) storedCounters(t *testing.T, quoteID string) (up, down int) {
	t.Helper()

	err := a.db.QueryRow(
		"SELECT up_vote_count, down_vote_count FROM quotes WHERE id = $1", quoteID,
	).Scan(&up, &down)
	require.NoError(t, err)

	return up, down
}
