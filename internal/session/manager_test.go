package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keysmith/backend/internal/domain"
)

func newTestManager(ttl time.Duration) *Manager {
	signer := NewSigner(strings.Repeat("a", 32), "keysmith-test")
	return NewManager(NewMemoryStore(), signer, ttl)
}

func testAdmin() *domain.Admin {
	return &domain.Admin{ID: 7, Name: "Alice", Email: "a@x.com"}
}

func TestManager_LoginAndCurrent(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(time.Hour)

	token, err := manager.Login(ctx, testAdmin())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := manager.Current(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.AdminID)
	assert.Equal(t, "Alice", sess.AdminName)
}

func TestManager_Current_NoToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	_, err := manager.Current(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestManager_Current_TamperedToken(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(time.Hour)

	token, err := manager.Login(ctx, testAdmin())
	require.NoError(t, err)

	_, err = manager.Current(ctx, token+"x")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestManager_Current_ForeignSignature(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(time.Hour)

	// 其他密钥签发的令牌不可用于伪造身份
	other := NewManager(manager.store, NewSigner(strings.Repeat("b", 32), "keysmith-test"), time.Hour)
	token, err := other.Login(ctx, testAdmin())
	require.NoError(t, err)

	_, err = manager.Current(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(time.Hour)

	token, err := manager.Login(ctx, testAdmin())
	require.NoError(t, err)

	require.NoError(t, manager.Logout(ctx, token))

	_, err = manager.Current(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// 重复登出与登出无效令牌均为幂等
	assert.NoError(t, manager.Logout(ctx, token))
	assert.NoError(t, manager.Logout(ctx, "garbage"))
	assert.NoError(t, manager.Logout(ctx, ""))
}

func TestManager_Current_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(10 * time.Millisecond)

	token, err := manager.Login(ctx, testAdmin())
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = manager.Current(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
