package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/appian-deploy/appian-deploy/internal/tracker"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// Process exit codes
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitUsage           = 2
	ExitTransport       = 3
	ExitAuthentication  = 4
	ExitServer          = 5
	ExitTimeout         = 6
	ExitPollTimeout     = 7
	ExitNotFound        = 8
	ExitDecode          = 9
	ExitOperationFailed = 10
	ExitInterrupted     = 130
)

// UsageError reports invalid flags, arguments or configuration
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

func missingFlag(name string) error {
	return usageErrorf("required flag \"--%s\" not set", name)
}

// OperationFailedError reports an operation that finished without succeeding
type OperationFailedError struct {
	Snapshot models.Snapshot
}

func (e *OperationFailedError) Error() string {
	status := "unknown"
	if e.Snapshot.Status != nil {
		status = e.Snapshot.Status.String()
	}
	return fmt.Sprintf("%s %s finished with status %s", e.Snapshot.Operation.Kind, e.Snapshot.Operation.ID, status)
}

// ExitCode maps an error returned by Execute to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usage     *UsageError
		transport *client.TransportError
		auth      *client.AuthenticationError
		server    *client.ServerError
		timeout   *client.TimeoutError
		poll      *tracker.PollTimeoutError
		notFound  *client.NotFoundError
		decode    *client.DecodeError
		failed    *OperationFailedError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &usage):
		return ExitUsage
	case errors.As(err, &transport):
		return ExitTransport
	case errors.As(err, &auth):
		return ExitAuthentication
	case errors.As(err, &server):
		return ExitServer
	case errors.As(err, &timeout):
		return ExitTimeout
	case errors.As(err, &poll):
		return ExitPollTimeout
	case errors.As(err, &notFound):
		return ExitNotFound
	case errors.As(err, &decode):
		return ExitDecode
	case errors.As(err, &failed):
		return ExitOperationFailed
	default:
		return ExitFailure
	}
}
