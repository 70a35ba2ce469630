package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SirOwss/MASARI/internal/dto"
	"github.com/SirOwss/MASARI/internal/model"
	"github.com/SirOwss/MASARI/internal/service"
	"github.com/SirOwss/MASARI/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ *dto.RefreshRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string) error {
	return m.logoutErr
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	generateResult *service.GenerateResult
	generateErr    error
	runsResult     []model.ScheduleRun
	runsErr        error
	exportData     []byte
	exportRun      *model.ScheduleRun
	exportErr      error
}

func (m *mockScheduleService) Generate(_ context.Context, _ service.GenerateInput, _ string) (*service.GenerateResult, error) {
	return m.generateResult, m.generateErr
}
func (m *mockScheduleService) ListRuns(_ context.Context, _ int) ([]model.ScheduleRun, error) {
	return m.runsResult, m.runsErr
}
func (m *mockScheduleService) GetExport(_ context.Context, _, _ string) ([]byte, *model.ScheduleRun, error) {
	return m.exportData, m.exportRun, m.exportErr
}

// ── 请求辅助 ──

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应不是合法 JSON: %v\n%s", err, w.Body.String())
	}
	return resp
}

// withUser 注入认证上下文（绕过 JWT 中间件）
func withUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler 测试
// ═══════════════════════════════════════════════════════════

func setupScheduleRouter(svc *mockScheduleService) *gin.Engine {
	h := NewScheduleHandler(svc)
	r := gin.New()
	r.POST("/schedules/generate", withUser("user-1", "operator"), h.Generate)
	r.GET("/schedules/runs", h.ListRuns)
	r.GET("/schedules/runs/:id/export", h.DownloadExport)
	return r
}

func validGenerateBody() dto.GenerateRequest {
	return dto.GenerateRequest{
		RegistrarTables: [][][]string{{{"h"}, {"r"}}},
		DateGrid:        [][]string{{"h"}, {"r"}},
	}
}

func TestScheduleHandler_Generate_成功(t *testing.T) {
	svc := &mockScheduleService{
		generateResult: &service.GenerateResult{RunID: "run-1", Title: "t"},
	}
	r := setupScheduleRouter(svc)

	w := doRequest(r, http.MethodPost, "/schedules/generate", validGenerateBody())
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d: %s", w.Code, w.Body.String())
	}
	if resp := decodeResponse(t, w); resp.Code != 0 {
		t.Errorf("期望 code=0，实际=%d", resp.Code)
	}
}

func TestScheduleHandler_Generate_参数缺失(t *testing.T) {
	r := setupScheduleRouter(&mockScheduleService{})

	w := doRequest(r, http.MethodPost, "/schedules/generate", map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

func TestScheduleHandler_Generate_表头错误映射400(t *testing.T) {
	svc := &mockScheduleService{generateErr: service.ErrRegistrarHeader}
	r := setupScheduleRouter(svc)

	w := doRequest(r, http.MethodPost, "/schedules/generate", validGenerateBody())
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != 13001 {
		t.Errorf("期望 code=13001，实际=%d", resp.Code)
	}
}

func TestScheduleHandler_Generate_内部失败映射500(t *testing.T) {
	svc := &mockScheduleService{generateErr: service.ErrGenerateFailed}
	r := setupScheduleRouter(svc)

	w := doRequest(r, http.MethodPost, "/schedules/generate", validGenerateBody())
	if w.Code != http.StatusInternalServerError {
		t.Errorf("期望 500，实际=%d", w.Code)
	}
}

func TestScheduleHandler_DownloadExport_成功(t *testing.T) {
	svc := &mockScheduleService{
		exportData: []byte("PK fake xlsx"),
		exportRun:  &model.ScheduleRun{RunID: "run-1", Title: "Final Exam Schedule"},
	}
	r := setupScheduleRouter(svc)

	w := doRequest(r, http.MethodGet, "/schedules/runs/run-1/export?format=xlsx", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Final+Exam+Schedule.xlsx") {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type 不符: %s", ct)
	}
}

func TestScheduleHandler_DownloadExport_错误映射(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"不支持的格式", service.ErrUnsupportedFormat, http.StatusBadRequest},
		{"记录不存在", service.ErrRunNotFound, http.StatusNotFound},
		{"缓存过期", service.ErrExportExpired, http.StatusGone},
	}

	for _, c := range cases {
		r := setupScheduleRouter(&mockScheduleService{exportErr: c.err})
		w := doRequest(r, http.MethodGet, "/schedules/runs/run-1/export?format=xlsx", nil)
		if w.Code != c.wantCode {
			t.Errorf("%s: 期望 %d，实际=%d", c.name, c.wantCode, w.Code)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler 测试
// ═══════════════════════════════════════════════════════════

func setupAuthRouter(svc *mockAuthService) *gin.Engine {
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	return r
}

func TestAuthHandler_Login_成功(t *testing.T) {
	svc := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "a", RefreshToken: "r"},
	}
	r := setupAuthRouter(svc)

	w := doRequest(r, http.MethodPost, "/auth/login", dto.LoginRequest{
		Username: "admin",
		Password: "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d: %s", w.Code, w.Body.String())
	}
}

func TestAuthHandler_Login_凭证错误映射401(t *testing.T) {
	svc := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	r := setupAuthRouter(svc)

	w := doRequest(r, http.MethodPost, "/auth/login", dto.LoginRequest{
		Username: "admin",
		Password: "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际=%d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != 11001 {
		t.Errorf("期望 code=11001，实际=%d", resp.Code)
	}
}

func TestAuthHandler_Refresh_无效Token映射401(t *testing.T) {
	svc := &mockAuthService{refreshErr: service.ErrInvalidRefresh}
	r := setupAuthRouter(svc)

	w := doRequest(r, http.MethodPost, "/auth/refresh", dto.RefreshRequest{
		RefreshToken: "stale",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际=%d", w.Code)
	}
}
