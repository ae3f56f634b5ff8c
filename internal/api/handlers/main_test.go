package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"taskguardian/internal/api"
	"taskguardian/internal/api/handlers"
	"taskguardian/internal/auth"
	"taskguardian/internal/middleware"
	"taskguardian/internal/models"
	"taskguardian/internal/repository"
	"taskguardian/pkg/logger"
)

var (
	testDB     *sql.DB
	testRedis  *redis.Client
	testTokens *auth.TokenManager
)

// TestMain starts throwaway Postgres and Redis containers so the full
// HTTP surface runs against the real stores.
func TestMain(m *testing.M) {
	logger.InitLoggers()
	defer logger.SyncLoggers()

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct docker pool: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %v", err)
	}

	pgResource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=guardian",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=taskguardian_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start postgres container: %v", err)
	}

	redisResource, err := pool.Run("redis", "7-alpine", nil)
	if err != nil {
		log.Fatalf("Could not start redis container: %v", err)
	}

	if err := pool.Retry(func() error {
		var err error
		testDB, err = sql.Open("postgres", fmt.Sprintf(
			"host=localhost port=%s user=guardian password=secret dbname=taskguardian_test sslmode=disable",
			pgResource.GetPort("5432/tcp")))
		if err != nil {
			return err
		}
		return testDB.Ping()
	}); err != nil {
		log.Fatalf("Could not connect to postgres: %v", err)
	}

	if err := pool.Retry(func() error {
		testRedis = redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("localhost:%s", redisResource.GetPort("6379/tcp")),
		})
		return testRedis.Ping(context.Background()).Err()
	}); err != nil {
		log.Fatalf("Could not connect to redis: %v", err)
	}

	if err := repository.CreateTableIfNotExists(testDB); err != nil {
		log.Fatalf("Could not create tables: %v", err)
	}

	testTokens = auth.NewTokenManager("test-secret", time.Hour)

	code := m.Run()

	testDB.Close()
	testRedis.Close()
	_ = pool.Purge(pgResource)
	_ = pool.Purge(redisResource)
	os.Exit(code)
}

func newTestApp() *fiber.App {
	h := handlers.New(testDB, testRedis, testTokens, nil)
	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	api.RegisterRoutes(app, h, testTokens)
	return app
}

// request fires one JSON request at the app and returns status and body.
func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// signupUser creates an account through the API and returns its session
// token, user id and username. The id comes from decoding the token.
func signupUser(t *testing.T, app *fiber.App, role string) (string, int, string) {
	t.Helper()
	username := uniqueName("user")
	status, body := request(t, app, "POST", "/api/auth/signup", "", map[string]string{
		"username": username,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusOK, status, "signup failed: %s", body)

	var result struct {
		State   string `json:"state"`
		Session string `json:"session"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.Equal(t, "success", result.State)

	session, err := testTokens.Parse(result.Session)
	require.NoError(t, err)
	return result.Session, session.UserID, username
}

func createTask(t *testing.T, app *fiber.App, token string) models.Task {
	t.Helper()
	status, body := request(t, app, "POST", "/api/task", token, map[string]string{
		"title":       "Ship release",
		"description": "Cut, tag and publish the next release",
	})
	require.Equal(t, http.StatusOK, status, "create task failed: %s", body)

	var result struct {
		State string      `json:"state"`
		Task  models.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.Equal(t, "success", result.State)
	return result.Task
}
