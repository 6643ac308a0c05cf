package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

// fakeBackend answers /ping and /predictions/{model} like TorchServe.
type fakeBackend struct {
	srv      *httptest.Server
	healthy  atomic.Bool
	predicts atomic.Int64
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{}
	f.healthy.Store(true)
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		if !f.healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"status":"Healthy"}`)
	})
	mux.HandleFunc("/predictions/", func(w http.ResponseWriter, r *http.Request) {
		f.predicts.Add(1)
		model := strings.TrimPrefix(r.URL.Path, "/predictions/")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": []map[string]interface{}{
				{"bbox": []float64{1.9, 2, 3, 4}, "confidence": 0.75, "label": model + "-car"},
			},
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// startGateway builds the full serving stack against a fake backend and
// serves it on a loopback listener until the test ends.
func startGateway(t *testing.T, mutate func(*config.Config)) (string, *fakeBackend, *gateway) {
	t.Helper()
	backend := newFakeBackend(t)

	cfg := config.Default()
	cfg.Backend.BaseURL = backend.srv.URL
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	if mutate != nil {
		mutate(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	gw, err := buildGateway(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- gw.run(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("gateway run: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("gateway did not stop")
		}
	})
	return "http://" + ln.Addr().String(), backend, gw
}

// runCLI executes the root command and returns what it printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

//Personal.AI order the ending
