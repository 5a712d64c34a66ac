package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/gemfury/gemfury/internal/config"
	"github.com/gemfury/gemfury/internal/version"
)

func testClient(srv *httptest.Server, token string) *Client {
	return New(config.Config{
		Endpoint:  srv.URL,
		Pushpoint: srv.URL,
		APIToken:  token,
	})
}

func TestListRequestShape(t *testing.T) {
	var gotHeader http.Header
	var gotQuery string

	r := mux.NewRouter()
	r.HandleFunc("/gems", func(w http.ResponseWriter, req *http.Request) {
		gotHeader = req.Header
		gotQuery = req.URL.RawQuery
		fmt.Fprint(w, `[{"name":"foo","latest_version":{"version":"1.2.3"}},{"name":"bar"}]`)
	}).Methods("GET")
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := New(config.Config{Endpoint: srv.URL, APIToken: "secret", Account: "other"})
	gems, err := c.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if got := gotHeader.Get("Accept"); got != "application/vnd.fury.v1+json" {
		t.Errorf("unexpected Accept header %q", got)
	}
	if got := gotHeader.Get("Authorization"); got != "secret" {
		t.Errorf("unexpected Authorization header %q", got)
	}
	if got := gotHeader.Get("X-Gem-Version"); got != version.Version {
		t.Errorf("unexpected X-Gem-Version header %q", got)
	}
	if gotQuery != "as=other" {
		t.Errorf("expected impersonation query, got %q", gotQuery)
	}

	if len(gems) != 2 || gems[0].Name != "foo" {
		t.Fatalf("unexpected gems %+v", gems)
	}
	if gems[0].LatestVersion == nil || gems[0].LatestVersion.Version != "1.2.3" {
		t.Errorf("latest version not decoded: %+v", gems[0].LatestVersion)
	}
	if gems[1].LatestVersion != nil {
		t.Errorf("expected nil latest version, got %+v", gems[1].LatestVersion)
	}
}

func TestPushGemRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget-1.0.0.gem")
	if err := os.WriteFile(path, []byte("gem contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/uploads", func(w http.ResponseWriter, req *http.Request) {
		file, header, err := req.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Filename != "widget-1.0.0.gem" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "gem contents" {
			t.Errorf("unexpected upload body %q", data)
		}
		fmt.Fprint(w, `{"name":"widget","version":"1.0.0"}`)
	}).Methods("POST")
	srv := httptest.NewServer(r)
	defer srv.Close()

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	c := testClient(srv, "secret")
	result, err := c.PushGem(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	if result.Name != "widget" || result.Version != "1.0.0" {
		t.Errorf("unexpected result %+v", result)
	}

	// The pipeline borrows the handle; the caller still owns it.
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		t.Errorf("file handle should still be open: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Errorf("first close should succeed: %v", err)
	}
}

func TestPushGemDupeVersion(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/uploads", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"DupeVersion","message":"widget-1.0.0 already exists"}}`)
	}).Methods("POST")
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := testClient(srv, "secret")
	_, err := c.PushGem(context.Background(), newFakeSource("gem contents"))
	if !errors.Is(err, ErrDupeVersion) {
		t.Fatalf("expected ErrDupeVersion, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "widget-1.0.0 already exists" {
		t.Errorf("expected server message, got %v", err)
	}
}

func TestYankVersionNotFound(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/gems/{name}/versions/{version}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("DELETE")
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := testClient(srv, "secret")
	err := c.YankVersion(context.Background(), "widget", "9.9.9")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGitRebuildStreamsOutput(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/git/repos/me/app/builds", func(w http.ResponseWriter, req *http.Request) {
		if got := req.Header.Get("Accept"); got != "application/vnd.fury.v1+text" {
			t.Errorf("unexpected Accept header %q", got)
		}
		fmt.Fprint(w, "remote: building...\nremote: done\n")
	}).Methods("POST")
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := testClient(srv, "secret")
	var out bytes.Buffer
	c.SetStream(&out)

	if err := c.GitRebuild(context.Background(), "app"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "remote: building...\nremote: done\n" {
		t.Errorf("unexpected streamed output %q", out.String())
	}
}

func TestGitRebuildErrorIsNotStreamed(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/git/repos/me/app/builds", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"type":"Forbidden","message":"not your repo"}}`)
	}).Methods("POST")
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := testClient(srv, "secret")
	var out bytes.Buffer
	c.SetStream(&out)

	err := c.GitRebuild(context.Background(), "app")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("error body must not stream, got %q", out.String())
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "not your repo" {
		t.Errorf("expected extracted message, got %v", err)
	}
}

func TestGitConfigUpdate(t *testing.T) {
	var gotForm map[string][]string

	r := mux.NewRouter()
	r.HandleFunc("/git/repos/me/app/config-vars", func(w http.ResponseWriter, req *http.Request) {
		req.ParseForm()
		gotForm = req.PostForm
		fmt.Fprint(w, `{}`)
	}).Methods("PATCH")
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := testClient(srv, "secret")
	err := c.GitConfigUpdate(context.Background(), "app", map[string]string{"RAILS_ENV": "production"})
	if err != nil {
		t.Fatal(err)
	}
	if got := gotForm["config_vars[RAILS_ENV]"]; len(got) != 1 || got[0] != "production" {
		t.Errorf("unexpected form %v", gotForm)
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		minimum string
		wantErr error
	}{
		{"older minimum passes", "0.1.0", nil},
		{"current version passes", version.Version, nil},
		{"newer minimum fails", "99.0.0", ErrInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.NewRouter()
			r.HandleFunc("/status/version", func(w http.ResponseWriter, req *http.Request) {
				fmt.Fprintf(w, `{"version":%q}`, tt.minimum)
			}).Methods("GET")
			srv := httptest.NewServer(r)
			defer srv.Close()

			err := testClient(srv, "").CheckVersion(context.Background())
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUnauthenticatedGuard(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := testClient(srv, "")
	_, err := c.List(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if requests != 0 {
		t.Errorf("guard should fail before any network call, saw %d requests", requests)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {}))
	srv.Close() // connection refused from here on

	c := testClient(srv, "secret")
	_, err := c.List(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}

	// No HTTP status was received, so no status-mapped kind may appear.
	if errors.Is(err, ErrAPI) || errors.Is(err, ErrTimeout) {
		t.Errorf("transport failure must not map to an HTTP kind: %v", err)
	}
}
