package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleProgram = `
PROGRAM IS
    a, b
IN
    a := 1;
    b := a + 2;
    WRITE b;
END
`

func testServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(0)
}

func createTestSession(t *testing.T, server *Server) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp SessionCreateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected non-empty session ID")
	}
	return resp.SessionID
}

func postJSON(t *testing.T, server *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %v", resp["status"])
	}
}

func TestCreateAndDestroySession(t *testing.T) {
	server := testServer(t)
	id := createTestSession(t, server)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/session/"+id, nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session/"+id, nil)
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after destroy, got %d", w.Code)
	}
}

func TestCompileAndStep(t *testing.T) {
	server := testServer(t)
	id := createTestSession(t, server)

	w := postJSON(t, server, "/api/v1/session/"+id+"/compile", CompileRequest{Source: sampleProgram})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var compileResp CompileResponse
	if err := json.NewDecoder(w.Body).Decode(&compileResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !compileResp.Success {
		t.Fatalf("expected compile success, got error: %s", compileResp.Error)
	}

	w = postJSON(t, server, "/api/v1/session/"+id+"/step", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+id+"/registers", nil)
	wr := httptest.NewRecorder()
	server.Handler().ServeHTTP(wr, req)
	if wr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", wr.Code)
	}
	var regs RegistersResponse
	if err := json.NewDecoder(wr.Body).Decode(&regs); err != nil {
		t.Fatalf("decode registers: %v", err)
	}
}

func TestCompileFailureReportsError(t *testing.T) {
	server := testServer(t)
	id := createTestSession(t, server)

	w := postJSON(t, server, "/api/v1/session/"+id+"/compile", CompileRequest{Source: "not a valid program"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 (compile errors are reported in the body), got %d", w.Code)
	}
	var compileResp CompileResponse
	if err := json.NewDecoder(w.Body).Decode(&compileResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if compileResp.Success {
		t.Fatal("expected compile failure for invalid source")
	}
	if compileResp.Error == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestBreakpointLifecycle(t *testing.T) {
	server := testServer(t)
	id := createTestSession(t, server)

	w := postJSON(t, server, "/api/v1/session/"+id+"/compile", CompileRequest{Source: sampleProgram})
	if w.Code != http.StatusOK {
		t.Fatalf("compile failed: %s", w.Body.String())
	}

	w = postJSON(t, server, "/api/v1/session/"+id+"/breakpoint", BreakpointRequest{Address: 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+id+"/breakpoints", nil)
	wr := httptest.NewRecorder()
	server.Handler().ServeHTTP(wr, req)

	var bps BreakpointsResponse
	if err := json.NewDecoder(wr.Body).Decode(&bps); err != nil {
		t.Fatalf("decode breakpoints: %v", err)
	}
	if len(bps.Breakpoints) != 1 {
		t.Fatalf("expected 1 breakpoint, got %d", len(bps.Breakpoints))
	}
}

func TestUnknownSessionReturns404(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/does-not-exist", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCORSAllowsLocalhost(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected localhost origin to be echoed back, got %q", got)
	}
}
