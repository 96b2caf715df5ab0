package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appian-deploy/appian-deploy/pkg/models"
)

var testID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(&Options{
		BaseURL: server.URL + "/",
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Options
		wantErr bool
	}{
		{name: "valid options", opts: &Options{BaseURL: "https://example.appian.com", Timeout: time.Second}},
		{name: "zero timeout uses default", opts: &Options{BaseURL: "http://localhost:8080"}},
		{name: "nil options have no base url", opts: nil, wantErr: true},
		{name: "missing scheme", opts: &Options{BaseURL: "example.appian.com"}, wantErr: true},
		{name: "unparseable", opts: &Options{BaseURL: "http://[::1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Greater(t, c.timeout, time.Duration(0))
		})
	}
}

func TestGetDeploymentStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/deployment/v2/deployments/"+testID.String(), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "test-key", r.Header.Get(HeaderAPIKey))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"deploymentId":"` + testID.String() + `","status":"IN_PROGRESS","currentStep":"Importing"}`))
	})

	status, err := c.GetDeploymentStatus(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, models.DeploymentStatusInProgress, status.Status)
	assert.Equal(t, testID, status.DeploymentID)
}

func TestGetDeploymentStatusUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("no"))
	})

	_, err := c.GetDeploymentStatus(context.Background(), testID)
	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "no", authErr.Message)
}

func TestGetExportStatusUsesSuitePath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suite/deployment-management/v2/deployments/"+testID.String(), r.URL.Path)
		_, _ = w.Write([]byte(`{"uuid":"` + testID.String() + `","url":"x","status":"COMPLETED"}`))
	})

	status, err := c.GetExportStatus(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusCompleted, status.Status)
}

func TestGetDeploymentLogsAndPackages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/deployment/v2/deployments/" + testID.String() + "/log":
			assert.Equal(t, "25", r.URL.Query().Get("tail"))
			_, _ = w.Write([]byte(`{"logs":[{"timestamp":"2024-01-02T03:04:05Z","level":"Info","component":"import","message":"started"}],"total":1,"hasMore":false}`))
		case "/deployment/v2/packages":
			assert.Equal(t, "a,b", r.URL.Query().Get("app_uuids"))
			_, _ = w.Write([]byte(`{"packages":[{"id":"p1","name":"Core","version":"1.0"}],"total":1}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	logs, err := c.GetDeploymentLogs(context.Background(), testID, 25)
	require.NoError(t, err)
	require.Len(t, logs.Logs, 1)
	assert.Equal(t, models.LogLevelInfo, logs.Logs[0].Level)

	pkgs, err := c.GetPackages(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, pkgs.Total)
	assert.Equal(t, "Core", pkgs.Packages[0].Name)
}

type recordedPart struct {
	contentType string
	fileName    string
	body        string
}

func readParts(t *testing.T, r *http.Request) map[string]recordedPart {
	reader, err := r.MultipartReader()
	require.NoError(t, err)

	parts := make(map[string]recordedPart)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		parts[part.FormName()] = recordedPart{
			contentType: part.Header.Get("Content-Type"),
			fileName:    part.FileName(),
			body:        string(body),
		}
	}
	return parts
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDeploy(t *testing.T) {
	pkg := writeTempFile(t, "app.zip", "zip-bytes")
	script := writeTempFile(t, "001.sql", "select 1;")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/deployment/v2/deployments", r.URL.Path)
		assert.Equal(t, ActionTypeImport, r.Header.Get(HeaderActionType))

		parts := readParts(t, r)
		require.Contains(t, parts, "json")
		assert.Equal(t, "application/json", parts["json"].contentType)

		var req models.DeploymentRequest
		require.NoError(t, json.Unmarshal([]byte(parts["json"].body), &req))
		assert.Equal(t, "release", req.Name)

		assert.Equal(t, "app.zip", parts["packageFileName"].fileName)
		assert.Equal(t, "zip-bytes", parts["packageFileName"].body)
		assert.Equal(t, "select 1;", parts["databaseScript1"].body)
		assert.NotContains(t, parts, "customizationFileName")

		_, _ = w.Write([]byte(`{"uuid":"` + testID.String() + `","url":"https://example/x","status":"InProgress"}`))
	})

	resp, err := c.Deploy(context.Background(),
		models.DeploymentRequest{Name: "release", PackageFileName: "app.zip"},
		DeployFiles{Package: pkg, DatabaseScripts: []string{script}})
	require.NoError(t, err)
	assert.Equal(t, testID, resp.UUID)
	assert.Equal(t, "InProgress", resp.Status)
}

func TestDeployMissingFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Deploy(context.Background(),
		models.DeploymentRequest{Name: "release", PackageFileName: "missing.zip"},
		DeployFiles{Package: filepath.Join(t.TempDir(), "missing.zip")})
	assert.Error(t, err)
}

func TestExportAndInspect(t *testing.T) {
	pkg := writeTempFile(t, "app.zip", "zip-bytes")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		parts := readParts(t, r)
		switch r.URL.Path {
		case "/suite/deployment-management/v2/deployments":
			assert.Equal(t, ActionTypeExport, r.Header.Get(HeaderActionType))
			assert.Len(t, parts, 1)
			_, _ = w.Write([]byte(`{"uuid":"` + testID.String() + `","url":"x","status":"IN_PROGRESS"}`))
		case "/suite/deployment-management/v2/inspections":
			assert.Empty(t, r.Header.Get(HeaderActionType))
			assert.Equal(t, "zip-bytes", parts["zipFile"].body)
			_, _ = w.Write([]byte(`{"uuid":"` + testID.String() + `","url":"x"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	exp, err := c.Export(context.Background(), models.ExportRequest{UUIDs: []uuid.UUID{testID}, ExportType: models.ExportTypePackage})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusInProgress, exp.Status)

	insp, err := c.Inspect(context.Background(), models.InspectionRequest{PackageFileName: "app.zip"}, InspectFiles{Package: pkg})
	require.NoError(t, err)
	assert.Equal(t, testID, insp.UUID)
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/deployment/v2/artifacts/pkg-1":
			_, _ = w.Write([]byte("PK\x03\x04"))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("gone"))
		}
	})

	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "pkg-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "PK\x03\x04", buf.String())

	buf.Reset()
	_, err = c.Download(context.Background(), c.baseURL+"/files/missing.zip", &buf)
	assert.True(t, IsNotFound(err))
	assert.Zero(t, buf.Len())
}

func TestDownloadScopesCredentialsToBaseURL(t *testing.T) {
	var foreign http.Header
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreign = r.Header.Clone()
		_, _ = w.Write([]byte("PK\x03\x04"))
	}))
	t.Cleanup(storage.Close)

	var local http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		local = r.Header.Clone()
		_, _ = w.Write([]byte("PK\x03\x04"))
	})

	var buf bytes.Buffer
	_, err := c.Download(context.Background(), storage.URL+"/exports/app.zip", &buf)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04", buf.String())
	require.NotNil(t, foreign)
	assert.Empty(t, foreign.Get("Authorization"))
	assert.Empty(t, foreign.Get(HeaderAPIKey))

	buf.Reset()
	_, err = c.Download(context.Background(), c.baseURL+"/exports/app.zip", &buf)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, "Bearer test-key", local.Get("Authorization"))
	assert.Equal(t, "test-key", local.Get(HeaderAPIKey))
}

func TestSameOrigin(t *testing.T) {
	c, err := NewClient(&Options{BaseURL: "https://example.appian.com/suite", APIKey: "k"})
	require.NoError(t, err)

	tests := []struct {
		url  string
		want bool
	}{
		{url: "https://example.appian.com/suite/deployment/v2/artifacts/1", want: true},
		{url: "HTTPS://Example.Appian.com/other", want: true},
		{url: "http://example.appian.com/suite/x", want: false},
		{url: "https://example.appian.com:8443/suite/x", want: false},
		{url: "https://storage.example.net/x.zip", want: false},
		{url: "https://example.appian.com.evil.net/x", want: false},
		{url: "http://[::1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, c.sameOrigin(tt.url))
		})
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	c, err := NewClient(&Options{BaseURL: baseURL, APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.GetDeploymentStatus(context.Background(), testID)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.MethodGet, te.Method)
	assert.Contains(t, te.URL, testID.String())
}

func TestContextCancelAbandonsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status":"SUCCEEDED"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.GetDeploymentStatus(ctx, testID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}
