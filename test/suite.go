package test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/appian-deploy/appian-deploy/internal/db/repos"
	"github.com/appian-deploy/appian-deploy/internal/tracker"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/test/mocks"
)

// DefaultTestTimeout is the default timeout for test suites.
const DefaultTestTimeout = 30 * time.Second

// Suite encapsulates all components needed for integration testing.
// It provides a complete test setup with:
//   - Operation history database
//   - Mock deployment-management API server
//   - Real API client
type Suite struct {
	t *testing.T

	// Server components
	App     *fiber.App
	Server  *httptest.Server
	MockAPI *mocks.MockAppianAPI

	// Client components
	APIClient *client.APIClient

	// Database components
	DB            *gorm.DB
	OperationRepo *repos.OperationRepository

	ctx        context.Context
	cancelFunc context.CancelFunc

	cleanup func()
}

// NewSuite creates a new test suite.
// The suite must be cleaned up after use by calling Cleanup.
func NewSuite(t *testing.T) *Suite {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)

	suite := &Suite{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
	}
	suite.cleanup = func() {
		if suite.cancelFunc != nil {
			suite.cancelFunc()
		}
	}

	SetupTestDB(suite)
	SetupServer(suite)

	return suite
}

// T returns the testing.T instance for this suite
func (s *Suite) T() *testing.T {
	return s.t
}

// Cleanup tears down the test suite, releasing all resources.
// This should be deferred immediately after creating the suite.
func (s *Suite) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// Context returns the suite's context, which is automatically
// canceled when the suite is cleaned up.
func (s *Suite) Context() context.Context {
	return s.ctx
}

// Require returns a require.Assertions instance for this suite.
func (s *Suite) Require() *require.Assertions {
	return require.New(s.t)
}

// Poller returns a poller against the suite's client that queries without
// waiting between attempts
func (s *Suite) Poller(timeout time.Duration) *tracker.Poller {
	opts := tracker.DefaultOptions()
	opts.Interval = 0
	opts.Timeout = timeout
	opts.Backoff.Enabled = false
	return tracker.NewPoller(s.APIClient, opts)
}

// Resolver returns a results resolver against the suite's client
func (s *Suite) Resolver() *tracker.Resolver {
	return tracker.NewResolver(s.APIClient)
}
