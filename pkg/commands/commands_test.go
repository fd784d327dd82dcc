package commands

import (
	"bytes"
	"net"
	"strings"
	"testing"
)

func TestCommandsRegistered(t *testing.T) {
	root := New()
	want := []string{"list", "add", "edit", "remove", "import", "snapshots", "serve", "ui", "mcp", "version", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing command %q: %v", name, err)
		}
	}
}

func TestListHelpNamesFacets(t *testing.T) {
	root := New()
	cmd, _, err := root.Find([]string{"list"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(cmd.Long, "statuses") || !strings.Contains(cmd.Long, "materials") {
		t.Fatalf("list help should describe facets:\n%s", cmd.Long)
	}
}

func TestVersionPrints(t *testing.T) {
	root := New()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--short"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "dev") {
		t.Fatalf("expected version in output, got %q", out.String())
	}
}

func TestListenURL(t *testing.T) {
	cases := []struct {
		host string
		addr *net.TCPAddr
		tls  bool
		want string
	}{
		{"127.0.0.1", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8091}, false, "http://127.0.0.1:8091/mcp"},
		{"0.0.0.0", &net.TCPAddr{IP: net.IPv4zero, Port: 9000}, true, "https://127.0.0.1:9000/mcp"},
		{"::1", &net.TCPAddr{IP: net.IPv6loopback, Port: 80}, false, "http://[::1]:80/mcp"},
	}
	for _, c := range cases {
		if got := listenURL(c.tls, c.host, c.addr, "/mcp"); got != c.want {
			t.Fatalf("listenURL(%q) = %q, want %q", c.host, got, c.want)
		}
	}
}
