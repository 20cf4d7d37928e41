package store

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/telemetry/logger"
	"github.com/gymone/gymadmin/internal/telemetry/metric"
)

type fixture struct {
	client  *connection.HTTPClient
	guard   *connection.Guard
	metrics *metric.Registry
	deps    Deps
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newFixture(t *testing.T, h http.HandlerFunc) *fixture {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	reg := metric.NewRegistry()
	guard := connection.NewGuard(func(context.Context) error { return nil }, logger.Nop(), reg)
	client := connection.NewHTTPClient(server.URL, staticToken("tok"), connection.Options{
		Guard:   guard,
		Logger:  logger.Nop(),
		Metrics: reg,
	})
	return &fixture{
		client:  client,
		guard:   guard,
		metrics: reg,
		deps:    Deps{API: client, Logger: logger.Nop(), Metrics: reg},
	}
}

func memberJSON(id int, first string) string {
	return fmt.Sprintf(`{"id":%d,"unique_id":"AB12CD%02d","first_name":%q,"last_name":"Doe","email":"%s@gym.test","status":"active"}`,
		id, id%100, first, first)
}
