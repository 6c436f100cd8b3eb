package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keysmith/backend/internal/auth"
	"keysmith/backend/internal/config"
	"keysmith/backend/internal/service"
	"keysmith/backend/internal/session"
	"keysmith/backend/internal/storage/memory"
)

const testSessionSecret = "test-secret-key-at-least-32-chars-long"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	signer := session.NewSigner(testSessionSecret, "keysmith")
	sessions := session.NewManager(session.NewMemoryStore(), signer, time.Hour)

	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	return NewRouter(RouterDependencies{
		Config:   cfg,
		Keys:     service.NewAPIKeyService(store, 30*24*time.Hour),
		Auth:     auth.NewService(store),
		Sessions: sessions,
	})
}

func doJSON(r *gin.Engine, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// loginAs 注册并登录一个管理员，返回会话令牌
func loginAs(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()

	w := doJSON(r, http.MethodPost, "/register", gin.H{
		"name":     "Admin",
		"email":    email,
		"password": "secret-password",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/login", gin.H{
		"email":    email,
		"password": "secret-password",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestGenerateKey(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/generate-key", gin.H{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"email":     "ada@example.com",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			APIKey string `json:"apiKey"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, regexp.MustCompile(`^sk-sm-v1-[0-9A-F]{32}$`), resp.Data.APIKey)
}

func TestGenerateKeyMissingFields(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/generate-key", gin.H{
		"firstname": "Ada",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveUserThenValidate(t *testing.T) {
	r := newTestRouter(t)

	const key = "sk-sm-v1-0123456789ABCDEF0123456789ABCDEF"

	w := doJSON(r, http.MethodPost, "/save-user", gin.H{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"email":     "ada@example.com",
		"api_key":   key,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/validate-key", gin.H{"api_key": key}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Valid)
}

func TestValidateUnknownKey(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/validate-key", gin.H{
		"api_key": "sk-sm-v1-FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Valid)
}

func TestSaveUserDuplicateKey(t *testing.T) {
	r := newTestRouter(t)

	body := gin.H{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"email":     "ada@example.com",
		"api_key":   "sk-sm-v1-0123456789ABCDEF0123456789ABCDEF",
	}

	w := doJSON(r, http.MethodPost, "/save-user", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/save-user", body, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteUser(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/save-user", gin.H{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"email":     "ada@example.com",
		"api_key":   "sk-sm-v1-0123456789ABCDEF0123456789ABCDEF",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/delete-user/%d", resp.Data.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 再删一次应为 404
	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/delete-user/%d", resp.Data.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUserBadID(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodDelete, "/delete-user/not-a-number", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := newTestRouter(t)

	body := gin.H{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "secret-password",
	}

	w := doJSON(r, http.MethodPost, "/register", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/register", body, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/register", gin.H{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "secret-password",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/login", gin.H{
		"email":    "admin@example.com",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// 不存在的邮箱得到完全相同的响应体
	w2 := doJSON(r, http.MethodPost, "/login", gin.H{
		"email":    "nobody@example.com",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w2.Code)
	assert.Equal(t, w.Body.String(), w2.Body.String())
}

func TestDashboardRequiresSession(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/dashboard-data", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/current-admin", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardWithSession(t *testing.T) {
	r := newTestRouter(t)

	for i := 0; i < 2; i++ {
		w := doJSON(r, http.MethodPost, "/save-user", gin.H{
			"firstname": "User",
			"lastname":  fmt.Sprintf("Number%d", i),
			"email":     fmt.Sprintf("user%d@example.com", i),
			"api_key":   fmt.Sprintf("sk-sm-v1-%032X", i),
		}, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	token := loginAs(t, r, "admin@example.com")

	w := doJSON(r, http.MethodGet, "/dashboard-data", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Users []struct {
				Email  string `json:"email"`
				APIKey string `json:"apiKey"`
				Status string `json:"status"`
			} `json:"users"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Users, 2)

	// 最新创建的用户排在最前
	assert.Equal(t, "user1@example.com", resp.Data.Users[0].Email)
	assert.Equal(t, "user0@example.com", resp.Data.Users[1].Email)
	assert.Equal(t, "active", resp.Data.Users[0].Status)
}

func TestCurrentAdmin(t *testing.T) {
	r := newTestRouter(t)

	token := loginAs(t, r, "admin@example.com")

	w := doJSON(r, http.MethodGet, "/current-admin", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "success", resp.Msg)
	assert.Equal(t, "Admin", resp.Data.Name)
}

func TestLogoutRevokesSession(t *testing.T) {
	r := newTestRouter(t)

	token := loginAs(t, r, "admin@example.com")
	header := map[string]string{"Authorization": "Bearer " + token}

	w := doJSON(r, http.MethodGet, "/logout", nil, header)
	require.Equal(t, http.StatusOK, w.Code)

	// 登出后原令牌立即失效
	w = doJSON(r, http.MethodGet, "/current-admin", nil, header)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 重复登出依然成功
	w = doJSON(r, http.MethodGet, "/logout", nil, header)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutWithoutSession(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/logout", nil, nil)
	resp := decodeResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, resp.Code)
}
