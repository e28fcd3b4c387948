package main

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"crypto-checkout/internal/config"
	"crypto-checkout/internal/server"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type IntegrationTestSuite struct {
	suite.Suite
	postgresContainer *postgres.PostgresContainer
	serverInstance    *server.Server
	serverPort        string
	baseURL           string
	client            *http.Client
	dbConnStr         string
}

func (suite *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("crypto_checkout"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		suite.T().Fatalf("Failed to start postgres container: %s", err)
	}
	suite.postgresContainer = postgresContainer

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		suite.T().Fatalf("Failed to get connection string: %s", err)
	}
	suite.dbConnStr = connStr

	// Run migrations
	if err := suite.runMigrations(); err != nil {
		suite.T().Fatalf("Failed to run migrations: %s", err)
	}

	// Start the application server
	if err := suite.startApplicationServer(); err != nil {
		suite.T().Fatalf("Failed to start application server: %s", err)
	}

	suite.client = &http.Client{
		Timeout: 30 * time.Second,
	}
}

func (suite *IntegrationTestSuite) runMigrations() error {
	db, err := sql.Open("postgres", suite.dbConnStr)
	if err != nil {
		return err
	}
	defer db.Close()

	migrationFiles, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// Sort migration files by name (version)
	sort.Slice(migrationFiles, func(i, j int) bool {
		return migrationFiles[i].Name() < migrationFiles[j].Name()
	})

	for _, file := range migrationFiles {
		if strings.HasSuffix(file.Name(), ".sql") {
			migrationPath := filepath.Join("migrations", file.Name())
			migrationSQL, err := migrationsFS.ReadFile(migrationPath)
			if err != nil {
				return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
			}

			if _, err := db.Exec(string(migrationSQL)); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file.Name(), err)
			}

			suite.T().Logf("Executed migration: %s", file.Name())
		}
	}

	return nil
}

func (suite *IntegrationTestSuite) startApplicationServer() error {
	ctx := context.Background()

	host, err := suite.postgresContainer.Host(ctx)
	if err != nil {
		return err
	}

	mappedPort, err := suite.postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		return err
	}

	cfg := &config.Config{
		ServerPort:            "0", // Let OS choose a free port
		StorageDriver:         config.DriverPostgres,
		DBHost:                host,
		DBPort:                mappedPort.Port(),
		DBUser:                "postgres",
		DBPassword:            "password",
		DBName:                "crypto_checkout",
		DBSSLMode:             "disable",
		PaymentBaseURL:        "https://fake.coinbase.com/pay",
		WebhookMaxRetries:     3,
		WebhookRetryBaseDelay: time.Second,
	}

	serverInstance, port, err := server.StartServer(cfg)
	if err != nil {
		return err
	}

	suite.serverInstance = serverInstance
	suite.serverPort = port
	suite.baseURL = "http://localhost:" + port

	return suite.waitForServerReady()
}

func (suite *IntegrationTestSuite) waitForServerReady() error {
	timeout := 30 * time.Second
	start := time.Now()

	for time.Since(start) < timeout {
		resp, err := http.Get(suite.baseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

func (suite *IntegrationTestSuite) TearDownSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if suite.serverInstance != nil {
		suite.serverInstance.Stop(ctx)
	}

	if suite.postgresContainer != nil {
		suite.postgresContainer.Terminate(ctx)
	}
}

// Helper methods for API calls

func (suite *IntegrationTestSuite) postJSON(path string, payload map[string]interface{}) (int, string, error) {
	body, _ := json.Marshal(payload)

	resp, err := suite.client.Post(suite.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}

	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	return resp.StatusCode, string(respBody), nil
}

func (suite *IntegrationTestSuite) checkout(amount interface{}, email string) (int, string, error) {
	return suite.postJSON("/checkout", map[string]interface{}{
		"amount": amount,
		"email":  email,
	})
}

func (suite *IntegrationTestSuite) webhook(transactionID, status string) (int, string, error) {
	return suite.postJSON("/webhook", map[string]interface{}{
		"transaction_id": transactionID,
		"status":         status,
	})
}

func (suite *IntegrationTestSuite) getTransaction(transactionID string) (int, string, error) {
	resp, err := suite.client.Get(suite.baseURL + "/transactions/" + transactionID)
	if err != nil {
		return 0, "", err
	}

	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	return resp.StatusCode, string(respBody), nil
}

func (suite *IntegrationTestSuite) listTransactions() ([]map[string]interface{}, error) {
	resp, err := suite.client.Get(suite.baseURL + "/transactions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var transactions []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Helper to parse response and log errors
func (suite *IntegrationTestSuite) parseResponse(body string) (map[string]interface{}, error) {
	var response map[string]interface{}
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		suite.T().Logf("Failed to parse response: %s", body)
		return nil, err
	}
	return response, nil
}

// Helper to compare decimal values properly
func (suite *IntegrationTestSuite) assertDecimalEqual(expected, actual string, msgAndArgs ...interface{}) {
	expectedDec, err := decimal.NewFromString(expected)
	if err != nil {
		suite.T().Fatalf("Invalid expected decimal: %s", expected)
	}

	actualDec, err := decimal.NewFromString(actual)
	if err != nil {
		suite.T().Fatalf("Invalid actual decimal: %s", actual)
	}

	assert.True(suite.T(), expectedDec.Equal(actualDec),
		"Decimal values not equal: expected %s, got %s", expected, actual)
}

// ------------------------------------------------------------------
// Steps below are helpers (non-test methods). They are executed in the
// order invoked by TestFlow for deterministic ordering.
// ------------------------------------------------------------------

func (suite *IntegrationTestSuite) stepHealthCheck() {
	resp, err := suite.client.Get(suite.baseURL + "/health")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var healthResp map[string]interface{}
	err = json.Unmarshal(body, &healthResp)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "healthy", healthResp["status"])
	assert.NotEmpty(suite.T(), healthResp["timestamp"])

	database, ok := healthResp["database"].(map[string]interface{})
	assert.True(suite.T(), ok, "Response should have 'database' field")
	assert.Equal(suite.T(), true, database["connected"])
}

func (suite *IntegrationTestSuite) stepCheckoutCompletedFlow() {
	status, body, err := suite.checkout(100, "test@example.com")
	assert.NoError(suite.T(), err)
	suite.T().Logf("Checkout Response: %s", body)
	assert.Equal(suite.T(), http.StatusOK, status)

	response, err := suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["success"])
	assert.Equal(suite.T(), "pending", response["status"])

	transactionID, _ := response["transaction_id"].(string)
	assert.NotEmpty(suite.T(), transactionID)

	paymentURL, _ := response["payment_url"].(string)
	assert.Contains(suite.T(), paymentURL, transactionID,
		"payment URL should embed the transaction identifier verbatim")

	// Provider reports completion
	status, body, err = suite.webhook(transactionID, "completed")
	assert.NoError(suite.T(), err)
	suite.T().Logf("Webhook Response: %s", body)
	assert.Equal(suite.T(), http.StatusOK, status)

	response, err = suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["success"])

	transaction, ok := response["transaction"].(map[string]interface{})
	assert.True(suite.T(), ok, "Response should have 'transaction' field")
	assert.Equal(suite.T(), "completed", transaction["status"])

	// Stored record round-trips through the query endpoint
	status, body, err = suite.getTransaction(transactionID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, status)

	response, err = suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "completed", response["status"])
	assert.Equal(suite.T(), "test@example.com", response["email"])
	suite.assertDecimalEqual("100", response["amount"].(string))
}

func (suite *IntegrationTestSuite) stepCheckoutFailedFlow() {
	status, body, err := suite.checkout(250.75, "payer@example.com")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, status)

	response, err := suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	transactionID, _ := response["transaction_id"].(string)
	assert.NotEmpty(suite.T(), transactionID)

	status, body, err = suite.webhook(transactionID, "failed")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, status)

	status, body, err = suite.getTransaction(transactionID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, status)

	response, err = suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "failed", response["status"])
	suite.assertDecimalEqual("250.75", response["amount"].(string))
}

func (suite *IntegrationTestSuite) stepRejectsNegativeAmount() {
	before, err := suite.listTransactions()
	assert.NoError(suite.T(), err)

	status, body, err := suite.checkout(-100, "test@example.com")
	assert.NoError(suite.T(), err)
	suite.T().Logf("Negative Amount Response: %s", body)
	assert.Equal(suite.T(), http.StatusBadRequest, status)

	response, err := suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Invalid request data", response["error"])
	assert.NotEmpty(suite.T(), response["details"])

	// No row created
	after, err := suite.listTransactions()
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), after, len(before))
}

func (suite *IntegrationTestSuite) stepRejectsMalformedEmail() {
	status, body, err := suite.checkout(100, "invalid-email")
	assert.NoError(suite.T(), err)
	suite.T().Logf("Malformed Email Response: %s", body)
	assert.Equal(suite.T(), http.StatusBadRequest, status)

	response, err := suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Invalid request data", response["error"])
	assert.NotEmpty(suite.T(), response["details"])
}

func (suite *IntegrationTestSuite) stepWebhookUnknownTransaction() {
	before, err := suite.listTransactions()
	assert.NoError(suite.T(), err)

	status, body, err := suite.webhook("does-not-exist", "completed")
	assert.NoError(suite.T(), err)
	suite.T().Logf("Unknown Transaction Response: %s", body)
	assert.Equal(suite.T(), http.StatusNotFound, status)

	response, err := suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Transaction not found", response["error"])

	after, err := suite.listTransactions()
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), after, len(before))
}

func (suite *IntegrationTestSuite) stepWebhookInvalidStatus() {
	status, body, err := suite.checkout(10, "pending@example.com")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, status)

	response, err := suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	transactionID, _ := response["transaction_id"].(string)
	assert.NotEmpty(suite.T(), transactionID)

	status, body, err = suite.webhook(transactionID, "refunded")
	assert.NoError(suite.T(), err)
	suite.T().Logf("Invalid Status Response: %s", body)
	assert.Equal(suite.T(), http.StatusBadRequest, status)

	response, err = suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Invalid request data", response["error"])

	// Target row left unmodified
	status, body, err = suite.getTransaction(transactionID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, status)

	response, err = suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "pending", response["status"])
}

func (suite *IntegrationTestSuite) stepGetUnknownTransaction() {
	status, body, err := suite.getTransaction("does-not-exist")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, status)

	response, err := suite.parseResponse(body)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Transaction not found", response["error"])
}

func (suite *IntegrationTestSuite) stepListTransactions() {
	transactions, err := suite.listTransactions()
	assert.NoError(suite.T(), err)

	// Three successful checkouts happened across the earlier steps.
	assert.Len(suite.T(), transactions, 3)
	for _, transaction := range transactions {
		assert.NotEmpty(suite.T(), transaction["id"])
		assert.NotEmpty(suite.T(), transaction["transaction_id"])
		assert.NotEmpty(suite.T(), transaction["created_at"])
		assert.Contains(suite.T(), []interface{}{"pending", "completed", "failed"}, transaction["status"])
	}
}

func (suite *IntegrationTestSuite) TestFlow() {
	if testing.Short() {
		suite.T().Skip("Skipping integration test in short mode")
	}

	suite.stepHealthCheck()
	suite.stepCheckoutCompletedFlow()
	suite.stepCheckoutFailedFlow()
	suite.stepRejectsNegativeAmount()
	suite.stepRejectsMalformedEmail()
	suite.stepWebhookUnknownTransaction()
	suite.stepWebhookInvalidStatus()
	suite.stepGetUnknownTransaction()
	suite.stepListTransactions()
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
