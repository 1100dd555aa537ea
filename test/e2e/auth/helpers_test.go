package auth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the service image in a container and drive it through
 * the SDK. They need Docker and are opt-in via AUTH_E2E=1.
 */

const (
	testImageName = "tokenauth-test:latest"

	testSecret   = "e2e-signing-secret-0123456789abcdefghij"
	testPassword = "Correct-Horse-1"
)

func TestMain(m *testing.M) {
	if os.Getenv("AUTH_E2E") != "1" {
		fmt.Fprintln(os.Stdout, "AUTH_E2E is not set; skipping end-to-end tests")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building auth service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up auth service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// relaxedLimits lifts the strict and moderate profiles so tests that make
// many calls in a row are not throttled.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_WINDOW_SEC": "60",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// setupAuthContainer starts the service with relaxed rate limits plus any
// extra environment and returns its base URL.
func setupAuthContainer(t *testing.T, extraEnv map[string]string) string {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"AUTH_SIGNING_SECRET":                testSecret,
		"AUTH_ISSUER":                        "tokenauth-e2e",
		"AUTH_DATABASE_FILE":                 "/data/auth.db",
		"AUTH_PEPPER_FILE":                   "/data/pepper",
		"AUTH_ACCESS_TOKEN_LIFETIME_SECONDS": "300",
		"ENV":                                "test",
		"LOG_LEVEL":                          "info",
		"LOG_FORMAT":                         "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func newClient(t *testing.T, extraEnv map[string]string) *authsdk.SDKClient {
	t.Helper()
	return authsdk.NewSDKClient(setupAuthContainer(t, extraEnv))
}

// registerAndLogin creates a user and returns a logged-in session.
func registerAndLogin(t *testing.T, client *authsdk.SDKClient, email string) *authsdk.Session {
	t.Helper()

	_, err := client.Register(t.Context(), email, testPassword)
	require.NoError(t, err)

	session, err := client.AuthenticateWithPassword(t.Context(), email, testPassword)
	require.NoError(t, err)
	return session
}

func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *authsdk.APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	require.Equal(t, code, apiErr.Code)
}

func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, 300, resp.ExpiresIn)
}
