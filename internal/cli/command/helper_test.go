package command

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

const testToken = "tok-1"

// backend is a minimal Gym One API.
type backend struct {
	t   *testing.T
	srv *httptest.Server

	// expired makes every data endpoint reject the token.
	expired   atomic.Bool
	validates atomic.Int32

	mu      sync.Mutex
	bodies  map[string]string
	queries map[string]string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{t: t, bodies: map[string]string{}, queries: map[string]string{}}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) body(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[path]
}

func (b *backend) query(path, key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, _ := url.ParseQuery(b.queries[path])
	return v.Get(key)
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies[r.URL.Path] = string(data)
	b.queries[r.URL.Path] = r.URL.RawQuery
	b.mu.Unlock()

	route := r.Method + " " + r.URL.Path
	if route == "POST /auth/login/gym-one" {
		fmt.Fprintf(w, `{"success":true,"data":{"token":%q,"user":{"id":"1","email":"desk@gym.test","name":"Desk","role":"admin"}}}`, testToken)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Unauthorized"}`)
		return
	}

	switch route {
	case "GET /auth/validate":
		b.validates.Add(1)
		fmt.Fprint(w, `{"valid":true,"user":{"id":"1","email":"desk@gym.test","name":"Desk","role":"admin"}}`)
		return
	case "POST /auth/logout":
		fmt.Fprint(w, `{"success":true}`)
		return
	}

	if b.expired.Load() {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Token is invalid or expired"}`)
		return
	}

	switch {
	case route == "GET /users":
		fmt.Fprint(w, `{"success":true,"data":[{"id":7,"unique_id":"AB12CD34","first_name":"Anna","last_name":"Kovacs","email":"anna@gym.test","status":"active"}],"total":1,"page":1,"totalPages":1}`)
	case route == "POST /users":
		fmt.Fprint(w, `{"success":true,"data":{"id":9,"unique_id":"ZX98YW76","first_name":"Bea","last_name":"Doe","email":"bea@gym.test","status":"active"}}`)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/users/"):
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"success":false,"message":"member has open invoices"}`)
	case route == "POST /emails/send", route == "POST /emails/bulk":
		fmt.Fprint(w, `{"success":true,"data":{"sent":1,"failed":0}}`)
	case route == "GET /emails/logs":
		fmt.Fprint(w, `{"success":true,"data":{"logs":[{"id":1,"recipient":"anna@gym.test","subject":"Welcome","status":"sent"},{"id":2,"recipient":"bea@gym.test","subject":"Renewal","status":"failed","error":"mailbox full"}],"total":2}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"message":"no route %s"}`, route)
	}
}

type result struct {
	stdout string
	stderr string
	code   int
}

// run executes one gymadmin invocation against b. An empty dataDir keeps
// the session in memory for that invocation only.
func run(t *testing.T, b *backend, dataDir, stdin string, args ...string) result {
	t.Helper()
	var stdout bytes.Buffer
	res := runTo(t, &stdout, b, dataDir, stdin, args...)
	res.stdout = stdout.String()
	return res
}

// runTo is run with stdout sent to w.
func runTo(t *testing.T, w io.Writer, b *backend, dataDir, stdin string, args ...string) result {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("output: table\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	app := App()
	app.Writer = w
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	argv := []string{"gymadmin", "--config", cfgPath, "--server", b.srv.URL}
	if dataDir == "" {
		argv = append(argv, "--ephemeral")
	} else {
		argv = append(argv, "--data-dir", dataDir)
	}
	err := app.Run(append(argv, args...))
	return result{stderr: stderr.String(), code: ExitCode(err)}
}

const loginLine = "auth login -e desk@gym.test -p pw\n"

// brokenWriter fails every write.
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }
