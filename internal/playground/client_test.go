package playground

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Endpoints{
		ExecuteURL: srv.URL + "/execute",
		MiriURL:    srv.URL + "/miri",
		GistURL:    srv.URL + "/meta/gist/",
		ShareURL:   srv.URL + "/",
		Referer:    "https://example.test/chat",
	}, 5*time.Second, nil)
}

func TestExecute(t *testing.T) {
	var got ExecuteRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(`{"success":true,"stdout":"4\n","stderr":"Compiling..."}`))
	})

	c := testClient(t, mux)
	req := NewExecuteRequest("fn main() { println!(\"{}\", 2 + 2); }", DefaultFlags())

	res, err := c.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if diff := cmp.Diff(req, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	want := &Result{Success: true, Stdout: "4\n", Stderr: "Compiling..."}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteWireFormat(t *testing.T) {
	var raw map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{"success":true,"stdout":"","stderr":""}`))
	})

	c := testClient(t, mux)
	_, err := c.Execute(context.Background(), NewExecuteRequest("pub fn f() {}", DefaultFlags()))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := map[string]any{
		"channel":   "nightly",
		"edition":   "2018",
		"code":      "pub fn f() {}",
		"crateType": "lib",
		"mode":      "debug",
		"tests":     false,
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("wire body mismatch (-want +got):\n%s", diff)
	}
}

func TestMiri(t *testing.T) {
	var raw map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/miri", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{"success":false,"stdout":"","stderr":"error: Undefined Behavior"}`))
	})

	c := testClient(t, mux)
	res, err := c.Miri(context.Background(), NewMiriRequest("fn main() {}", Flags{Edition: Edition2015}))
	if err != nil {
		t.Fatalf("Miri: %v", err)
	}
	if res.Success || res.Stderr != "error: Undefined Behavior" {
		t.Errorf("unexpected result: %+v", res)
	}

	want := map[string]any{"edition": "2015", "code": "fn main() {}"}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("wire body mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateGist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/meta/gist/", func(w http.ResponseWriter, r *http.Request) {
		if ref := r.Header.Get("Referer"); ref != "https://example.test/chat" {
			t.Errorf("referer = %q", ref)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "fn main() {}" {
			t.Errorf("code = %q", body["code"])
		}
		w.Write([]byte(`{"id":"deadbeef","url":"https://gist.github.com/deadbeef","code":"fn main() {}"}`))
	})

	c := testClient(t, mux)
	id, err := c.CreateGist(context.Background(), "fn main() {}")
	if err != nil {
		t.Fatalf("CreateGist: %v", err)
	}
	if id != "deadbeef" {
		t.Errorf("id = %q, want deadbeef", id)
	}
}

func TestCreateGistMissingID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/meta/gist/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"https://gist.github.com/"}`))
	})

	c := testClient(t, mux)
	_, err := c.CreateGist(context.Background(), "x")
	if !errors.Is(err, ErrNoGistID) {
		t.Fatalf("err = %v, want ErrNoGistID", err)
	}
	var shape *RemoteShapeError
	if !errors.As(err, &shape) {
		t.Errorf("err %T should be a *RemoteShapeError", err)
	}
}

func TestExecuteBadJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>busy</html>`))
	})

	c := testClient(t, mux)
	_, err := c.Execute(context.Background(), NewExecuteRequest("", DefaultFlags()))
	var shape *RemoteShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("err = %v, want *RemoteShapeError", err)
	}
	if shape.Op != "execute" {
		t.Errorf("op = %q, want execute", shape.Op)
	}
}

func TestExecuteHTTPStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	c := testClient(t, mux)
	_, err := c.Execute(context.Background(), NewExecuteRequest("", DefaultFlags()))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}

func TestExecuteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Endpoints{ExecuteURL: url + "/execute"}, time.Second, nil)
	_, err := c.Execute(context.Background(), NewExecuteRequest("", DefaultFlags()))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}

func TestExecuteMissingFields(t *testing.T) {
	bodies := map[string]string{
		"error object":   `{"error":"Compiler timed out"}`,
		"null":           `null`,
		"empty object":   `{}`,
		"missing stderr": `{"success":true,"stdout":"1"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			c := testClient(t, mux)
			res, err := c.Execute(context.Background(), NewExecuteRequest("fn main() {}", DefaultFlags()))
			if res != nil {
				t.Errorf("res = %+v, want nil", res)
			}
			var shape *RemoteShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("err = %v, want *RemoteShapeError", err)
			}
			if !errors.Is(err, ErrIncompleteResult) {
				t.Errorf("err = %v, want ErrIncompleteResult", err)
			}
		})
	}
}

func TestMiriMissingFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/miri", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Miri is unavailable"}`))
	})
	c := testClient(t, mux)
	_, err := c.Miri(context.Background(), NewMiriRequest("fn main() {}", DefaultFlags()))
	var shape *RemoteShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("err = %v, want *RemoteShapeError", err)
	}
	if shape.Op != "miri" || !errors.Is(err, ErrIncompleteResult) {
		t.Errorf("err = %v, want miri ErrIncompleteResult", err)
	}
}
