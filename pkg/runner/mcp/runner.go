package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/app"
)

// Transport is how the MCP server is reached: streamable HTTP or stdio.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

const defaultListenAddr = "127.0.0.1:8091"

// Runner serves the site journal tools until ctx is done.
type Runner struct {
	Service *app.Service
	// Scope is used by tool calls that name none.
	Scope   string
	Name    string
	Version string

	Log zerolog.Logger

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string
}

func (r Runner) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("mcp runner requires a service")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	name := r.Name
	if name == "" {
		name = "sitelog"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Browse and edit the site journal: events, materials, violations and visits of a project scope."),
		server.WithRecovery(),
	)

	svc := NewService(r.Service, r.Scope)
	registerResources(srv, svc)
	registerTools(srv, svc)

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv, name)
	case TransportStdio:
		r.Log.Debug().Str("scope", r.Scope).Msg("serving MCP on stdio")
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

// EndpointPath normalises the HTTP endpoint path, defaulting to /mcp.
func EndpointPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer, name string) error {
	cert, key := r.HTTPServerCert, r.HTTPServerKey
	if (cert == "") != (key == "") {
		return errors.New("both http tls cert and key must be provided")
	}
	tls := cert != ""

	listenAddr := r.HTTPListenAddr
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	router := mux.NewRouter()
	router.Handle(EndpointPath(r.HTTPEndpointPath), server.NewStreamableHTTPServer(srv))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"ok","server":%q}`+"\n", name)
	}).Methods(http.MethodGet)

	httpSrv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}
	r.Log.Info().Str("addr", ln.Addr().String()).Bool("tls", tls).Str("scope", r.Scope).Msg("serving MCP")

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			r.Log.Warn().Err(err).Msg("MCP shutdown")
		}
	})
	defer stop()

	if tls {
		err = httpSrv.ServeTLS(ln, cert, key)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
