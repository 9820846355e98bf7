package web

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"github.com/betterlb/openlgu/pkg/db"
	"github.com/betterlb/openlgu/pkg/search"
)

const testToken = "test-token"

func setupTestServer(t *testing.T) (*Server, *gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection so the in-memory database is shared.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	if err := db.InitDB(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	idx, err := search.Open("")
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	s := NewServer(conn, idx, map[string]string{testToken: "tester"}, nil)
	r := gin.New()
	s.RegisterRoutes(r)
	return s, r, conn
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedPerson(t *testing.T, conn *sql.DB, first, last string) int64 {
	t.Helper()
	id, err := db.UpsertPerson(conn, &db.Person{FirstName: first, LastName: last})
	if err != nil {
		t.Fatalf("seed person: %v", err)
	}
	return id
}

func seedSession(t *testing.T, conn *sql.DB) int64 {
	t.Helper()
	res, err := conn.Exec(`INSERT INTO sessions (date, type, ordinal) VALUES ('2025-08-18', 'regular', 90)`)
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

const samplePost = `90th Regular Session
August 18, 2025

1. ORDINANCE NO. 2025-0087
AN ORDINANCE ESTABLISHING A MUNICIPAL SCHOLARSHIP PROGRAM
Author: Hon. Maria Santos
Co-Author: Hon. Jose Rivera
Moved by: Hon. Pedro Reyes`

func TestParsePostEndToEnd(t *testing.T) {
	_, r, conn := setupTestServer(t)
	santosID := seedPerson(t, conn, "Maria", "Santos")
	seedPerson(t, conn, "Jose", "Rivera")

	w := doRequest(t, r, http.MethodPost, "/api/admin/parse-legislative-post",
		map[string]any{"content": samplePost}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success     bool `json:"success"`
		SessionInfo struct {
			Type    *string `json:"type"`
			Ordinal *int    `json:"ordinal"`
		} `json:"session_info"`
		Items []struct {
			Type    string   `json:"type"`
			Number  string   `json:"number"`
			Title   string   `json:"title"`
			Authors []string `json:"authors"`
		} `json:"items"`
		MatchedPersons map[string]*struct {
			PersonID   int64   `json:"person_id"`
			Name       string  `json:"name"`
			Confidence float64 `json:"confidence"`
		} `json:"matched_persons"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.SessionInfo.Type == nil || *resp.SessionInfo.Type != "regular" {
		t.Errorf("session type = %v", resp.SessionInfo.Type)
	}
	if resp.SessionInfo.Ordinal == nil || *resp.SessionInfo.Ordinal != 90 {
		t.Errorf("session ordinal = %v", resp.SessionInfo.Ordinal)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(resp.Items))
	}
	item := resp.Items[0]
	if item.Type != "ordinance" || item.Number != "2025-0087" {
		t.Errorf("item = %+v", item)
	}
	if len(item.Authors) != 1 || item.Authors[0] != "Maria Santos" {
		t.Errorf("authors = %v", item.Authors)
	}

	m, ok := resp.MatchedPersons["Maria Santos"]
	if !ok || m == nil {
		t.Fatalf("Maria Santos not matched: %v", resp.MatchedPersons)
	}
	if m.PersonID != santosID || m.Confidence != 0.7 {
		t.Errorf("match = %+v", m)
	}
	// Unknown names still get a key, mapped to an explicit null.
	if unresolved, ok := resp.MatchedPersons["Pedro Reyes"]; !ok {
		t.Error("unmatched name missing from map")
	} else if unresolved != nil {
		t.Errorf("unmatched name resolved to %+v", unresolved)
	}
}

func TestParsePostMissingContent(t *testing.T) {
	_, r, _ := setupTestServer(t)

	for name, body := range map[string]any{
		"empty object":   map[string]any{},
		"blank content":  map[string]any{"content": "   "},
		"wrong type":     map[string]any{"content": 123},
		"content object": map[string]any{"content": map[string]any{"text": "x"}},
	} {
		w := doRequest(t, r, http.MethodPost, "/api/admin/parse-legislative-post", body, testToken)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestParsePostFromURL(t *testing.T) {
	s, r, _ := setupTestServer(t)
	s.Fetch = func(ctx context.Context, rawURL string) (string, error) {
		if rawURL != "https://example.test/post" {
			t.Errorf("fetched %q", rawURL)
		}
		return samplePost, nil
	}

	w := doRequest(t, r, http.MethodPost, "/api/admin/parse-legislative-post",
		map[string]any{"url": "https://example.test/post"}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "2025-0087") {
		t.Errorf("fetched post not parsed: %s", w.Body.String())
	}
}

func TestAdminAuth(t *testing.T) {
	_, r, _ := setupTestServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/admin/conflicts", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	w = doRequest(t, r, http.MethodGet, "/api/admin/conflicts", nil, "wrong-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}

	// Bearer form is accepted too.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/conflicts", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("bearer token: status = %d, want 200", rec.Code)
	}
}

func TestBulkCreateAndPublicSearch(t *testing.T) {
	_, r, conn := setupTestServer(t)
	sessionID := seedSession(t, conn)

	body := map[string]any{
		"session_id": sessionID,
		"documents": []map[string]any{{
			"type":   "ordinance",
			"number": "2025-0087",
			"title":  "An Ordinance Establishing A Municipal Scholarship Program",
		}},
	}
	w := doRequest(t, r, http.MethodPost, "/api/admin/documents/bulk", body, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Created    int      `json:"created"`
		Duplicates []string `json:"duplicates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Created != 1 || len(resp.Duplicates) != 0 {
		t.Fatalf("unexpected result: %+v", resp)
	}

	// Resubmitting the same number reports a duplicate, not an error.
	w = doRequest(t, r, http.MethodPost, "/api/admin/documents/bulk", body, testToken)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Created != 0 || len(resp.Duplicates) != 1 {
		t.Fatalf("duplicate not reported: %+v", resp)
	}

	// Created documents are searchable without a token.
	w = doRequest(t, r, http.MethodGet, "/api/documents/search?q=scholarship", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "2025-0087") {
		t.Errorf("created document not indexed: %s", w.Body.String())
	}
}

func TestBulkCreateBatchTooLarge(t *testing.T) {
	_, r, conn := setupTestServer(t)
	sessionID := seedSession(t, conn)

	docs := make([]map[string]any, 101)
	for i := range docs {
		docs[i] = map[string]any{"type": "resolution", "number": fmt.Sprintf("2025-%04d", i)}
	}
	w := doRequest(t, r, http.MethodPost, "/api/admin/documents/bulk",
		map[string]any{"session_id": sessionID, "documents": docs}, testToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("oversized batch wrote %d rows", count)
	}
}

func TestResolveDuplicateErrors(t *testing.T) {
	_, r, conn := setupTestServer(t)

	w := doRequest(t, r, http.MethodPost, "/api/admin/documents/resolve-duplicate",
		map[string]any{"existing_document_id": 9999, "action": "keep_existing"}, testToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing document: status = %d, want 404", w.Code)
	}

	docID, err := db.InsertDocument(conn, &db.Document{Type: "ordinance", Number: "2025-0100", Title: "An Existing Ordinance"})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
	w = doRequest(t, r, http.MethodPost, "/api/admin/documents/resolve-duplicate",
		map[string]any{"existing_document_id": docID, "action": "delete_everything", "new_document": map[string]any{}}, testToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown action: status = %d, want 400", w.Code)
	}
	w = doRequest(t, r, http.MethodPost, "/api/admin/documents/resolve-duplicate",
		map[string]any{"existing_document_id": docID, "action": "merge"}, testToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing new_document: status = %d, want 400", w.Code)
	}

	w = doRequest(t, r, http.MethodPost, "/api/admin/documents/resolve-duplicate",
		map[string]any{"existing_document_id": docID, "action": "keep_existing"}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("keep_existing: status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"action_taken":"keep_existing"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestPersonSearchEndpoint(t *testing.T) {
	_, r, conn := setupTestServer(t)
	seedPerson(t, conn, "Maria", "Santos")

	w := doRequest(t, r, http.MethodGet, "/api/admin/persons/search?q=Mar", nil, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Santos") {
		t.Errorf("no hit for prefix query: %s", w.Body.String())
	}

	// Queries under two characters return an empty list, not an error.
	w = doRequest(t, r, http.MethodGet, "/api/admin/persons/search?q=M", nil, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("short query status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "Santos") {
		t.Errorf("short query returned hits: %s", w.Body.String())
	}
}

func TestDocumentSearchRequiresQuery(t *testing.T) {
	_, r, _ := setupTestServer(t)
	w := doRequest(t, r, http.MethodGet, "/api/documents/search", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	_, r, _ := setupTestServer(t)
	w := doRequest(t, r, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
