package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/appian-deploy/appian-deploy/internal/config"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client/mock"
)

var testID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

// setupTestCommand installs a mock client and returns a runner for the command tree
func setupTestCommand(t *testing.T) (*mock.MockClient, func(args ...string) (string, error)) {
	t.Helper()

	mockClient := &mock.MockClient{}

	// Save the original constructor and restore it after the test
	originalNewClient := newClient
	t.Cleanup(func() {
		newClient = originalNewClient
	})
	newClient = func(*config.Config) (client.Client, error) {
		return mockClient, nil
	}

	// Keep polling fast unless a test says otherwise
	t.Setenv("APPIAN_MONITOR_INTERVAL_SECONDS", "0")

	run := func(args ...string) (string, error) {
		rootCmd, c := newRootCmd()
		defer c.close()

		outputBuf := &bytes.Buffer{}
		rootCmd.SetOut(outputBuf)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetArgs(append(args, "--api-key=test-key", "--base-url=https://mysite.appiancloud.com"))

		err := rootCmd.Execute()
		return outputBuf.String(), err
	}
	return mockClient, run
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
