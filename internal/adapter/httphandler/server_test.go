package httphandler_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/niksmo/millet-catalog/internal/adapter/httphandler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServerLifecycle(t *testing.T) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv, err := httphandler.NewHTTPServer(ctx, "127.0.0.1:0", mux)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		srv.Run(stop)
		close(done)
	}()

	var res *http.Response
	require.Eventually(t, func() bool {
		res, err = http.Get("http://" + srv.Addr() + "/ping")
		return err == nil
	}, time.Second, 10*time.Millisecond)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	srv.Close(context.Background())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.Error(t, ctx.Err(), "Run cancels the app context on exit")
}

func TestHTTPServerBusyAddr(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = httphandler.NewHTTPServer(context.Background(), ln.Addr().String(), http.NewServeMux())
	assert.Error(t, err)
}

func TestHTTPServerCloseWithoutRun(t *testing.T) {
	srv, err := httphandler.NewHTTPServer(context.Background(), "127.0.0.1:0", http.NewServeMux())
	require.NoError(t, err)
	addr := srv.Addr()

	srv.Close(context.Background())

	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err, "address is released")
	ln.Close()
}
