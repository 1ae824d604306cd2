package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/erazemk/kitreq/internal/auth"
	"github.com/erazemk/kitreq/internal/db"
	"github.com/erazemk/kitreq/internal/live"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/settings"
	"github.com/erazemk/kitreq/internal/store"
	"github.com/erazemk/kitreq/internal/undo"
)

const (
	testJWTSecret      = "test-secret"
	testMasterPassword = "master-pass-123"
)

type testAPI struct {
	server *httptest.Server
	admin  string
	staff  string
	viewer string
}

func setupTestServer(t *testing.T) *testAPI {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	cache, err := settings.NewCache(ctx, database)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	hub := live.NewHub(NewSource(database, cache))
	hubCtx, stopHub := context.WithCancel(ctx)
	go hub.Run(hubCtx)

	router := NewRouter(Config{
		DB:        database,
		JWTSecret: testJWTSecret,
		Settings:  cache,
		Hub:       hub,
		Undo:      undo.NewBuffer(time.Minute),
	})
	server := httptest.NewServer(LoggingMiddleware(router))
	t.Cleanup(func() {
		server.Close()
		stopHub()
	})

	masterHash, _ := auth.HashPassword(testMasterPassword)
	store.SetMasterPasswordHash(ctx, database, masterHash)

	// Create accounts.
	hash, _ := auth.HashPassword("password")
	store.CreateUser(ctx, database, "admin", hash, model.RoleAdmin)
	staff, _ := store.CreateUser(ctx, database, "staff", hash, model.RoleStaff)
	viewer, _ := store.CreateUser(ctx, database, "viewer", hash, model.RoleViewer)

	api := &testAPI{server: server}
	api.admin = login(t, server, "admin", "password")
	api.staff, _ = auth.GenerateToken(testJWTSecret, staff.ID, staff.Username, staff.Role)
	api.viewer, _ = auth.GenerateToken(testJWTSecret, viewer.ID, viewer.Username, viewer.Role)
	return api
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// call sends a request and decodes a JSON response into out when given.
func (a *testAPI) call(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, a.server.URL+path, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func sampleRequestBody() map[string]any {
	return map[string]any{
		"item_name": "Folding table",
		"requested": 5,
		"custodian": "Ana",
		"location":  "Hall B",
		"email":     "ana@example.com",
	}
}

// createItem adds an inventory item as admin and returns its ID.
func (a *testAPI) createItem(t *testing.T, name string, requested int) string {
	t.Helper()
	var resp itemResponse
	status := a.call(t, "POST", "/api/inventory", a.admin, map[string]any{
		"item_name": name,
		"requested": requested,
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 creating item, got %d", status)
	}
	return resp.Item.ID
}

func TestLoginEndpoint(t *testing.T) {
	api := setupTestServer(t)

	// Test invalid credentials.
	if status := api.call(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"}, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", status)
	}
	if status := api.call(t, "POST", "/api/auth/login", "", map[string]string{"username": "nobody", "password": "password"}, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", status)
	}
	if status := api.call(t, "POST", "/api/auth/login", "", map[string]string{"username": "admin"}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	api := setupTestServer(t)
	token := login(t, api.server, "viewer", "password")

	if status := api.call(t, "GET", "/api/inventory", token, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", status)
	}
	if status := api.call(t, "POST", "/api/auth/logout", token, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", status)
	}
	if status := api.call(t, "GET", "/api/inventory", token, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}
}

func TestChangePassword(t *testing.T) {
	api := setupTestServer(t)
	token := login(t, api.server, "staff", "password")

	status := api.call(t, "PUT", "/api/auth/password", token, map[string]string{
		"current_password": "wrong", "new_password": "new-password",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", status)
	}

	status = api.call(t, "PUT", "/api/auth/password", token, map[string]string{
		"current_password": "password", "new_password": "short",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", status)
	}

	status = api.call(t, "PUT", "/api/auth/password", token, map[string]string{
		"current_password": "password", "new_password": "new-password",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	login(t, api.server, "staff", "new-password")
}

func TestUnauthenticatedAccess(t *testing.T) {
	api := setupTestServer(t)

	if status := api.call(t, "GET", "/api/inventory", "", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated read, got %d", status)
	}
	if status := api.call(t, "POST", "/api/inventory", "", map[string]any{"item_name": "x", "requested": 1}, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated write, got %d", status)
	}
	if status := api.call(t, "GET", "/api/inventory", "garbage", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", status)
	}

	// Settings are public.
	var s model.Settings
	if status := api.call(t, "GET", "/api/settings", "", nil, &s); status != http.StatusOK {
		t.Fatalf("expected 200 for settings, got %d", status)
	}
	if s != model.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", s)
	}
}

func TestPublicReadWhenLoginDisabled(t *testing.T) {
	api := setupTestServer(t)

	status := api.call(t, "PUT", "/api/settings", api.admin, map[string]any{
		"event_name": "Open Day", "survey_enabled": false, "require_login": false,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 updating settings, got %d", status)
	}

	if status := api.call(t, "GET", "/api/inventory", "", nil, nil); status != http.StatusOK {
		t.Errorf("expected public inventory read, got %d", status)
	}
	if status := api.call(t, "GET", "/api/requests", "", nil, nil); status != http.StatusOK {
		t.Errorf("expected public requests read, got %d", status)
	}
	// Writes still need an account.
	if status := api.call(t, "POST", "/api/inventory", "", map[string]any{"item_name": "x", "requested": 1}, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous write, got %d", status)
	}
}

func TestRoleBasedAccess(t *testing.T) {
	api := setupTestServer(t)

	if status := api.call(t, "GET", "/api/inventory", api.viewer, nil, nil); status != http.StatusOK {
		t.Errorf("expected viewer to read inventory, got %d", status)
	}
	if status := api.call(t, "POST", "/api/inventory", api.viewer, map[string]any{"item_name": "x", "requested": 1}, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for viewer creating item, got %d", status)
	}
	if status := api.call(t, "POST", "/api/inventory", api.staff, map[string]any{"item_name": "x", "requested": 1}, nil); status != http.StatusCreated {
		t.Errorf("expected staff to create item, got %d", status)
	}
	if status := api.call(t, "POST", "/api/admin/reset", api.staff, map[string]string{"master_password": testMasterPassword}, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for staff reset, got %d", status)
	}
	if status := api.call(t, "GET", "/api/users", api.staff, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for staff accessing users, got %d", status)
	}
	if status := api.call(t, "GET", "/api/surveys", api.viewer, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for viewer reading surveys, got %d", status)
	}
}

func TestRequestApprovalFlow(t *testing.T) {
	api := setupTestServer(t)

	// Anyone can submit.
	var created requestResponse
	if status := api.call(t, "POST", "/api/requests", "", sampleRequestBody(), &created); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if created.Request.ID == "" || created.Undo == nil {
		t.Fatalf("expected request and undo token, got %+v", created)
	}

	var pending []model.RequestItem
	api.call(t, "GET", "/api/requests", api.staff, nil, &pending)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}

	var item model.InventoryView
	if status := api.call(t, "POST", "/api/requests/"+created.Request.ID+"/approve", api.staff, nil, &item); status != http.StatusOK {
		t.Fatalf("expected 200 approving, got %d", status)
	}
	if item.ItemName != "Folding table" || item.Requested != 5 || item.Status != model.StatusMissing {
		t.Errorf("unexpected approved item: %+v", item)
	}
	if item.Received != 0 || item.OnHand != 0 || item.Verified || item.Returned {
		t.Errorf("expected zeroed lifecycle fields: %+v", item)
	}

	api.call(t, "GET", "/api/requests", api.staff, nil, &pending)
	if len(pending) != 0 {
		t.Errorf("expected request to be gone, got %d", len(pending))
	}

	if status := api.call(t, "POST", "/api/requests/"+created.Request.ID+"/approve", api.staff, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 approving twice, got %d", status)
	}
}

func TestRequestDenyAndValidation(t *testing.T) {
	api := setupTestServer(t)

	bad := sampleRequestBody()
	bad["email"] = "not-an-email"
	if status := api.call(t, "POST", "/api/requests", "", bad, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid email, got %d", status)
	}
	bad = sampleRequestBody()
	bad["requested"] = 0
	if status := api.call(t, "POST", "/api/requests", "", bad, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for zero quantity, got %d", status)
	}

	var created requestResponse
	api.call(t, "POST", "/api/requests", "", sampleRequestBody(), &created)
	if status := api.call(t, "DELETE", "/api/requests/"+created.Request.ID, api.staff, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 denying, got %d", status)
	}

	var items []model.InventoryView
	api.call(t, "GET", "/api/inventory", api.viewer, nil, &items)
	if len(items) != 0 {
		t.Errorf("expected denied request to stay out of inventory, got %d items", len(items))
	}
}

func TestRequestUndo(t *testing.T) {
	api := setupTestServer(t)

	var created requestResponse
	api.call(t, "POST", "/api/requests", "", sampleRequestBody(), &created)

	if status := api.call(t, "POST", "/api/undo/"+created.Undo.Token, "", nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 undoing request, got %d", status)
	}
	if status := api.call(t, "POST", "/api/undo/"+created.Undo.Token, "", nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 undoing twice, got %d", status)
	}

	var pending []model.RequestItem
	api.call(t, "GET", "/api/requests", api.admin, nil, &pending)
	if len(pending) != 0 {
		t.Errorf("expected request withdrawn, got %d", len(pending))
	}
}

func TestLifecycleAPI(t *testing.T) {
	api := setupTestServer(t)
	id := api.createItem(t, "Tent", 5)
	base := "/api/inventory/" + id

	if status := api.call(t, "POST", base+"/assign", api.staff, nil, nil); status != http.StatusConflict {
		t.Errorf("expected 409 assigning a missing item, got %d", status)
	}
	if status := api.call(t, "POST", base+"/received", api.staff, map[string]any{}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 without quantity, got %d", status)
	}
	if status := api.call(t, "POST", base+"/received", api.staff, map[string]int{"quantity": -2}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for negative quantity, got %d", status)
	}

	var item model.InventoryView
	api.call(t, "POST", base+"/received", api.staff, map[string]int{"quantity": 5}, &item)
	if item.Status != model.StatusComplete {
		t.Fatalf("expected complete, got %q", item.Status)
	}

	api.call(t, "POST", base+"/assign", api.staff, nil, &item)
	if item.Status != model.StatusAssigned {
		t.Fatalf("expected assigned, got %q", item.Status)
	}

	if status := api.call(t, "POST", base+"/missing", api.staff, map[string]int{"amount_returned": 6}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 returning more than requested, got %d", status)
	}

	api.call(t, "POST", base+"/missing", api.staff, map[string]int{"amount_returned": 3}, &item)
	if item.Missing != 2 || item.Received != 3 || item.Status != model.StatusAssigned {
		t.Errorf("expected missing=2 received=3 assigned, got %+v", item)
	}

	api.call(t, "POST", base+"/return", api.staff, nil, &item)
	if item.Status != model.StatusReturned {
		t.Errorf("expected returned, got %q", item.Status)
	}

	if status := api.call(t, "POST", "/api/inventory/no-such-id/assign", api.staff, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for unknown item, got %d", status)
	}
}

func TestEditAndDeleteItem(t *testing.T) {
	api := setupTestServer(t)
	id := api.createItem(t, "Cable", 3)

	var item model.InventoryView
	status := api.call(t, "PUT", "/api/inventory/"+id, api.staff, map[string]any{
		"item_name": "Power cable", "requested": 3, "received": 3, "custodian": "Luka",
	}, &item)
	if status != http.StatusOK {
		t.Fatalf("expected 200 editing, got %d", status)
	}
	if item.ItemName != "Power cable" || item.Status != model.StatusComplete {
		t.Errorf("unexpected edited item: %+v", item)
	}

	if status := api.call(t, "PUT", "/api/inventory/"+id, api.staff, map[string]any{"item_name": ""}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for empty name, got %d", status)
	}

	if status := api.call(t, "DELETE", "/api/inventory/"+id, api.staff, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 deleting, got %d", status)
	}
	if status := api.call(t, "GET", "/api/inventory/"+id, api.viewer, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestCreateItemUndo(t *testing.T) {
	api := setupTestServer(t)

	var created itemResponse
	api.call(t, "POST", "/api/inventory", api.staff, map[string]any{"item_name": "Cooler", "requested": 1}, &created)

	if status := api.call(t, "POST", "/api/undo/"+created.Undo.Token, api.viewer, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for viewer undo, got %d", status)
	}
	if status := api.call(t, "POST", "/api/undo/"+created.Undo.Token, api.staff, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 for staff undo, got %d", status)
	}

	var items []model.InventoryView
	api.call(t, "GET", "/api/inventory", api.viewer, nil, &items)
	if len(items) != 0 {
		t.Errorf("expected item removed by undo, got %d", len(items))
	}
}

func TestInventoryFilters(t *testing.T) {
	api := setupTestServer(t)

	complete := api.createItem(t, "Complete", 1)
	api.call(t, "POST", "/api/inventory/"+complete+"/received", api.staff, map[string]int{"quantity": 1}, nil)

	partial := api.createItem(t, "Partial", 4)
	api.call(t, "POST", "/api/inventory/"+partial+"/received", api.staff, map[string]int{"quantity": 4}, nil)
	api.call(t, "POST", "/api/inventory/"+partial+"/assign", api.staff, nil, nil)
	api.call(t, "POST", "/api/inventory/"+partial+"/missing", api.staff, map[string]int{"amount_returned": 1}, nil)

	api.createItem(t, "Waiting", 2)

	var items []model.InventoryView
	api.call(t, "GET", "/api/inventory", api.viewer, nil, &items)
	if len(items) != 3 {
		t.Errorf("expected 3 items unfiltered, got %d", len(items))
	}

	api.call(t, "GET", "/api/inventory?status=complete", api.viewer, nil, &items)
	if len(items) != 1 || items[0].ItemName != "Complete" {
		t.Errorf("expected only the complete item, got %+v", items)
	}

	api.call(t, "GET", "/api/inventory?filter=has-missing", api.viewer, nil, &items)
	if len(items) != 1 || items[0].ItemName != "Partial" {
		t.Errorf("expected only the partial return, got %+v", items)
	}

	if status := api.call(t, "GET", "/api/inventory?status=complete&filter=has-missing", api.viewer, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 combining filters, got %d", status)
	}
	if status := api.call(t, "GET", "/api/inventory?status=lost", api.viewer, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", status)
	}

	var summary model.Summary
	api.call(t, "GET", "/api/inventory/summary", api.viewer, nil, &summary)
	if summary.Total != 3 || summary.HasMissing != 1 || summary.Missing != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.ByStatus[model.StatusComplete] != 1 || summary.ByStatus[model.StatusAssigned] != 1 || summary.ByStatus[model.StatusMissing] != 1 {
		t.Errorf("unexpected status counts: %+v", summary.ByStatus)
	}
}

func TestExportInventory(t *testing.T) {
	api := setupTestServer(t)
	api.createItem(t, `Mic "SM58"`, 2)

	req, _ := authRequest("GET", api.server.URL+"/api/inventory/export", api.viewer, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected csv content type, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "inventory_export_") {
		t.Errorf("unexpected content disposition %q", cd)
	}

	body, _ := io.ReadAll(resp.Body)
	want := store.InventoryCSVHeader + "\n" + `"Mic ""SM58""",2,0,0,0,"","","","",No,"missing"` + "\n"
	if string(body) != want {
		t.Errorf("unexpected export:\n%s", body)
	}
}

func TestResetAndUndo(t *testing.T) {
	api := setupTestServer(t)
	api.createItem(t, "Generator", 1)
	api.createItem(t, "Lamp", 2)

	if status := api.call(t, "POST", "/api/admin/reset", api.admin, map[string]string{"master_password": "nope"}, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong master password, got %d", status)
	}

	var reset resetResponse
	if status := api.call(t, "POST", "/api/admin/reset", api.admin, map[string]string{"master_password": testMasterPassword}, &reset); status != http.StatusOK {
		t.Fatalf("expected 200 resetting, got %d", status)
	}
	if reset.Inventory != 2 || reset.Undo == nil {
		t.Fatalf("unexpected reset response: %+v", reset)
	}

	var items []model.InventoryView
	api.call(t, "GET", "/api/inventory", api.viewer, nil, &items)
	if len(items) != 0 {
		t.Fatalf("expected empty inventory after reset, got %d", len(items))
	}

	if status := api.call(t, "POST", "/api/undo/"+reset.Undo.Token, api.staff, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for staff undoing reset, got %d", status)
	}
	if status := api.call(t, "POST", "/api/undo/"+reset.Undo.Token, api.admin, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 undoing reset, got %d", status)
	}

	api.call(t, "GET", "/api/inventory", api.viewer, nil, &items)
	if len(items) != 2 || items[0].ItemName != "Generator" {
		t.Errorf("expected inventory restored in order, got %+v", items)
	}
}

func TestSetMasterPassword(t *testing.T) {
	api := setupTestServer(t)

	status := api.call(t, "PUT", "/api/admin/master-password", api.admin, map[string]string{
		"current_password": "wrong", "new_password": "another-master",
	}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for wrong current master password, got %d", status)
	}

	status = api.call(t, "PUT", "/api/admin/master-password", api.admin, map[string]string{
		"current_password": testMasterPassword, "new_password": "another-master",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	if status := api.call(t, "POST", "/api/admin/reset", api.admin, map[string]string{"master_password": testMasterPassword}, nil); status != http.StatusForbidden {
		t.Errorf("expected old master password to be rejected, got %d", status)
	}
	if status := api.call(t, "POST", "/api/admin/reset", api.admin, map[string]string{"master_password": "another-master"}, nil); status != http.StatusOK {
		t.Errorf("expected new master password to work, got %d", status)
	}
}

func TestSeedAndUndo(t *testing.T) {
	api := setupTestServer(t)

	var seeded seedResponse
	if status := api.call(t, "POST", "/api/admin/seed", api.admin, nil, &seeded); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if len(seeded.Items) != store.SeedCount {
		t.Fatalf("expected %d items, got %d", store.SeedCount, len(seeded.Items))
	}

	// Unrelated items survive undoing the batch.
	api.createItem(t, "Keep me", 1)

	api.call(t, "POST", "/api/undo/"+seeded.Undo.Token, api.admin, nil, nil)

	var items []model.InventoryView
	api.call(t, "GET", "/api/inventory", api.viewer, nil, &items)
	if len(items) != 1 || items[0].ItemName != "Keep me" {
		t.Errorf("expected only the unrelated item, got %+v", items)
	}
}

func TestSurveys(t *testing.T) {
	api := setupTestServer(t)
	answer := map[string]string{
		"user_type": "event-participant", "would_use_again": "yes", "prefer_over_excel": "depends",
		"feedback": "Quick to use",
	}

	if status := api.call(t, "POST", "/api/surveys", "", answer, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 while survey is disabled, got %d", status)
	}

	api.call(t, "PUT", "/api/settings", api.admin, map[string]any{
		"event_name": "Event", "survey_enabled": true, "require_login": true,
	}, nil)

	if status := api.call(t, "POST", "/api/surveys", "", map[string]string{"user_type": "boss"}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid answers, got %d", status)
	}
	if status := api.call(t, "POST", "/api/surveys", "", answer, nil); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	var surveys []model.SurveyResponse
	api.call(t, "GET", "/api/surveys", api.admin, nil, &surveys)
	if len(surveys) != 1 || surveys[0].Feedback != "Quick to use" {
		t.Errorf("unexpected surveys: %+v", surveys)
	}

	req, _ := authRequest("GET", api.server.URL+"/api/surveys/export", api.admin, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "event-participant,yes,depends,Quick to use") {
		t.Errorf("unexpected survey export:\n%s", body)
	}
}

func TestSettingsValidation(t *testing.T) {
	api := setupTestServer(t)

	if status := api.call(t, "PUT", "/api/settings", api.admin, map[string]any{"event_name": " "}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for empty event name, got %d", status)
	}
	if status := api.call(t, "PUT", "/api/settings", api.staff, map[string]any{"event_name": "Mine"}, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for staff, got %d", status)
	}
}

func TestUserManagement(t *testing.T) {
	api := setupTestServer(t)

	var user model.User
	status := api.call(t, "POST", "/api/users", api.admin, map[string]string{
		"username": "helper", "password": "helper-pass", "role": model.RoleStaff,
	}, &user)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	if status := api.call(t, "POST", "/api/users", api.admin, map[string]string{
		"username": "bad", "password": "helper-pass", "role": "manager",
	}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown role, got %d", status)
	}

	if status := api.call(t, "POST", "/api/users", api.admin, map[string]string{
		"username": "helper", "password": "helper-pass", "role": model.RoleViewer,
	}, nil); status != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", status)
	}

	login(t, api.server, "helper", "helper-pass")

	var users []model.User
	api.call(t, "GET", "/api/users", api.admin, nil, &users)
	if len(users) != 4 {
		t.Errorf("expected 4 users, got %d", len(users))
	}

	// The only admin cannot demote themselves.
	admin := users[0]
	if status := api.call(t, "PUT", "/api/users/"+itoa(admin.ID), api.admin, map[string]string{"role": model.RoleStaff}, nil); status != http.StatusConflict {
		t.Errorf("expected 409 demoting the last admin, got %d", status)
	}

	if status := api.call(t, "DELETE", "/api/users/"+itoa(user.ID), api.admin, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 deleting user, got %d", status)
	}
	if status := api.call(t, "PUT", "/api/users/9999", api.admin, map[string]string{"role": model.RoleStaff}, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 updating unknown user, got %d", status)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestLiveFeed(t *testing.T) {
	api := setupTestServer(t)

	url := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/api/live?collections=inventory&token=" + api.viewer
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	type snapshot struct {
		Type       string                `json:"type"`
		Collection string                `json:"collection"`
		Data       []model.InventoryView `json:"data"`
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first snapshot
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("reading initial snapshot: %v", err)
	}
	if first.Type != "snapshot" || first.Collection != "inventory" || len(first.Data) != 0 {
		t.Errorf("unexpected initial snapshot: %+v", first)
	}

	api.createItem(t, "Projector", 1)

	var next snapshot
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("reading update: %v", err)
	}
	if len(next.Data) != 1 || next.Data[0].ItemName != "Projector" || next.Data[0].Status != model.StatusMissing {
		t.Errorf("unexpected update: %+v", next)
	}
}

func TestLiveFeedRequiresLogin(t *testing.T) {
	api := setupTestServer(t)

	url := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/api/live"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial without token to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", resp)
	}
}
