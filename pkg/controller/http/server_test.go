package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/themis/pkg/controller/http"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/repository/memory"
	"github.com/secmon-lab/themis/pkg/service/blob"
	"github.com/secmon-lab/themis/pkg/service/ratelimit"
	"github.com/secmon-lab/themis/pkg/usecase"
)

const testSecret = "http-test-secret"

type testServer struct {
	handler http.Handler
	tokens  map[string]string
}

func newTestServer(t *testing.T, opts ...usecase.Option) *testServer {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()

	users := []*model.User{
		{ID: "resident-1", Name: "Alice", Role: types.RoleSubmitter, Active: true},
		{ID: "resident-2", Name: "Zoe", Role: types.RoleSubmitter, Active: true},
		{ID: "admin-1", Name: "Bob", Role: types.RoleApprover, Active: true},
		{ID: "worker-1", Name: "Carol", Role: types.RoleAssignee, Active: true},
	}
	ts := &testServer{tokens: map[string]string{}}
	for _, u := range users {
		gt.NoError(t, repo.User().Put(ctx, u)).Required()
		token, err := usecase.IssueToken(testSecret, &auth.Principal{ID: u.ID, Role: u.Role}, time.Hour)
		gt.NoError(t, err).Required()
		ts.tokens[u.ID] = token
	}

	opts = append([]usecase.Option{
		usecase.WithBlobStore(blob.NewMemory()),
		usecase.WithAuth(usecase.NewAuthUseCase(repo, testSecret)),
		usecase.WithFacilityConfig(&config.FacilityConfig{
			Upload: config.UploadPolicy{
				MaxFiles:         2,
				MaxFileSize:      1024,
				AllowedMimeTypes: []string{"image/png", "application/pdf"},
			},
		}),
	}, opts...)
	ts.handler = httpctrl.New(usecase.New(repo, opts...))
	return ts
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) do(t *testing.T, user, method, path string, body any) (*httptest.ResponseRecorder, *apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+ts.tokens[user])
	}
	return ts.serve(t, req)
}

func (ts *testServer) upload(t *testing.T, user, path string, files map[string][]byte) (*httptest.ResponseRecorder, *apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		gt.NoError(t, err).Required()
		_, err = part.Write(content)
		gt.NoError(t, err).Required()
	}
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.tokens[user])
	return ts.serve(t, req)
}

func (ts *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, *apiResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var resp apiResponse
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	return rec, &resp
}

func (ts *testServer) createComplaint(t *testing.T) int64 {
	t.Helper()
	rec, resp := ts.do(t, "resident-1", http.MethodPost, "/api/resident/complaints", map[string]string{
		"title":       "Leaking tap",
		"description": "Dripping all night",
		"category":    "Washroom - T2",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var c struct {
		ID              int64  `json:"id"`
		Status          string `json:"status"`
		DisplayCategory string `json:"display_category"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &c)).Required()
	gt.Value(t, c.Status).Equal("Pending")
	gt.Value(t, c.DisplayCategory).Equal("Washroom - T2")
	return c.ID
}

func complaintPath(prefix string, id int64, suffix string) string {
	return fmt.Sprintf("%s/%d%s", prefix, id, suffix)
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)
	rec, resp := ts.do(t, "", http.MethodGet, "/health", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Bool(t, resp.Success).True()
}

func TestServer_Authentication(t *testing.T) {
	ts := newTestServer(t)

	rec, resp := ts.do(t, "", http.MethodGet, "/api/me", nil)
	gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	gt.Bool(t, resp.Success).False()

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec, _ = ts.serve(t, req)
	gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)

	rec, resp = ts.do(t, "admin-1", http.MethodGet, "/api/me", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var me struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &me)).Required()
	gt.Value(t, me.ID).Equal("admin-1")
	gt.Value(t, me.Role).Equal(string(types.RoleApprover))
}

func TestServer_RoleGroups(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createComplaint(t)

	rec, _ := ts.do(t, "resident-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/approve"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusForbidden)

	rec, _ = ts.do(t, "admin-1", http.MethodPost, "/api/resident/complaints", map[string]string{"title": "x"})
	gt.Value(t, rec.Code).Equal(http.StatusForbidden)

	rec, _ = ts.do(t, "resident-2", http.MethodGet, complaintPath("/api/resident/complaints", id, ""), nil)
	gt.Value(t, rec.Code).Equal(http.StatusForbidden)

	rec, _ = ts.do(t, "admin-1", http.MethodGet, "/api/admin/complaints/99999", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)

	rec, _ = ts.do(t, "admin-1", http.MethodGet, "/api/admin/complaints/abc", nil)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestServer_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createComplaint(t)

	rec, _ := ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/reject"), map[string]string{})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec, _ = ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/approve"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec, _ = ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/approve"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusConflict)

	rec, _ = ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/assign"), map[string]string{"worker_id": "resident-2"})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec, _ = ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/assign"), map[string]string{"worker_id": "worker-1"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec, _ = ts.do(t, "worker-1", http.MethodPut, complaintPath("/api/worker/tasks", id, "/status"), map[string]string{"status": "In Progress"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec, resp := ts.upload(t, "worker-1", complaintPath("/api/worker/tasks", id, "/proof"), map[string][]byte{"after.png": []byte("png")})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var proof struct {
		Complaint struct {
			Status string `json:"status"`
		} `json:"complaint"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &proof)).Required()
	gt.Value(t, proof.Complaint.Status).Equal("WorkerPending")

	rec, _ = ts.do(t, "worker-1", http.MethodPut, complaintPath("/api/worker/tasks", id, "/status"), map[string]string{"status": "Completed", "resolution": "Fixed"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec, _ = ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/verify"), map[string]string{"action": "maybe"})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec, resp = ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/verify"), map[string]string{"action": "approve"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var resolved struct {
		Status         string   `json:"status"`
		TimeTakenHours *float64 `json:"time_taken_hours"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &resolved)).Required()
	gt.Value(t, resolved.Status).Equal("Resolved")
	gt.Value(t, resolved.TimeTakenHours).NotNil()

	rec, resp = ts.do(t, "worker-1", http.MethodGet, "/api/worker/tasks", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var tasks struct {
		Pending        []json.RawMessage `json:"pending"`
		Completed      []json.RawMessage `json:"completed"`
		CompletedTotal int               `json:"completed_total"`
		Pagination     struct {
			CurrentPage int `json:"current_page"`
			TotalPages  int `json:"total_pages"`
			Total       int `json:"total"`
		} `json:"pagination"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &tasks)).Required()
	gt.Array(t, tasks.Pending).Length(0)
	gt.Array(t, tasks.Completed).Length(1)
	gt.Value(t, tasks.CompletedTotal).Equal(1)
	gt.Value(t, tasks.Pagination.CurrentPage).Equal(1)
	gt.Value(t, tasks.Pagination.TotalPages).Equal(1)
	gt.Value(t, tasks.Pagination.Total).Equal(1)

	rec, _ = ts.do(t, "worker-1", http.MethodGet, "/api/worker/tasks?state=archived", nil)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestServer_UploadLimits(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createComplaint(t)
	path := complaintPath("/api/resident/complaints", id, "/attachments")

	rec, _ := ts.upload(t, "resident-1", path, map[string][]byte{
		"a.png": []byte("a"), "b.png": []byte("b"), "c.png": []byte("c"),
	})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec, _ = ts.upload(t, "resident-1", path, map[string][]byte{"big.png": make([]byte, 2048)})
	gt.Value(t, rec.Code).Equal(http.StatusRequestEntityTooLarge)

	rec, resp := ts.upload(t, "resident-1", path, map[string][]byte{"ok.png": []byte("ok")})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var stored []struct {
		Filename      string `json:"filename"`
		IsProofOfWork bool   `json:"is_proof_of_work"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &stored)).Required()
	gt.Array(t, stored).Length(1)
	gt.Value(t, stored[0].Filename).Equal("ok.png")
	gt.Bool(t, stored[0].IsProofOfWork).False()
}

func TestServer_RateLimit(t *testing.T) {
	ts := newTestServer(t, usecase.WithRateLimiter(ratelimit.NewMemory(1, time.Minute)))
	ts.createComplaint(t)

	rec, _ := ts.do(t, "resident-1", http.MethodPost, "/api/resident/complaints", map[string]string{
		"title": "Again", "description": "d", "category": "Washroom",
	})
	gt.Value(t, rec.Code).Equal(http.StatusTooManyRequests)
	gt.Value(t, rec.Header().Get("Retry-After")).NotEqual("")
}

func TestServer_Notifications(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createComplaint(t)

	rec, _ := ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/approve"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec, resp := ts.do(t, "resident-1", http.MethodGet, "/api/notifications?unread_only=true", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var notes []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &notes)).Required()
	gt.Array(t, notes).Length(1)
	gt.Value(t, notes[0].Type).Equal(string(types.NotificationComplaintApproved))

	rec, _ = ts.do(t, "worker-1", http.MethodPut, "/api/notifications/"+notes[0].ID+"/read", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)

	rec, _ = ts.do(t, "resident-1", http.MethodPut, "/api/notifications/"+notes[0].ID+"/read", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec, resp = ts.do(t, "admin-1", http.MethodPut, "/api/notifications/read-all", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var updated struct {
		Updated int `json:"updated"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &updated)).Required()
	gt.Value(t, updated.Updated).Equal(1)
}

func TestServer_Comments(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createComplaint(t)

	rec, _ := ts.do(t, "resident-1", http.MethodPost, complaintPath("/api/resident/complaints", id, "/comments"), map[string]string{"comment": "Any news?"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec, _ = ts.do(t, "admin-1", http.MethodPost, complaintPath("/api/admin/complaints", id, "/comments"), map[string]string{"comment": "Soon"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec, _ = ts.do(t, "worker-1", http.MethodPost, complaintPath("/api/worker/tasks", id, "/comments"), map[string]string{"comment": "Not mine"})
	gt.Value(t, rec.Code).Equal(http.StatusForbidden)

	rec, resp := ts.do(t, "resident-1", http.MethodGet, complaintPath("/api/complaints", id, "/comments"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var comments []struct {
		Comment    string `json:"comment"`
		AuthorName string `json:"author_name"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &comments)).Required()
	gt.Array(t, comments).Length(2)
	gt.Value(t, comments[0].Comment).Equal("Any news?")
	gt.Value(t, comments[1].AuthorName).Equal("Bob")

	rec, resp = ts.do(t, "admin-1", http.MethodGet, complaintPath("/api/complaints", id, "/actions"), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var actions struct {
		Actions []string `json:"actions"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &actions)).Required()
	gt.Array(t, actions.Actions).Has(string(types.ActionApprove))
}
