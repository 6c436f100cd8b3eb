package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/storage"
	"keysmith/backend/internal/storage/memory"
)

func newTestService(store *memory.Store) *APIKeyService {
	return NewAPIKeyService(store, 30*24*time.Hour)
}

func TestAPIKeyService_GenerateKey(t *testing.T) {
	service := newTestService(memory.NewStore())

	key, err := service.GenerateKey("Budi", "Santoso", "budi@example.com")
	require.NoError(t, err)
	assert.Regexp(t, `^sk-sm-v1-[0-9A-F]{32}$`, key)
}

func TestAPIKeyService_GenerateKey_MissingFields(t *testing.T) {
	service := newTestService(memory.NewStore())

	cases := [][3]string{
		{"", "Santoso", "budi@example.com"},
		{"Budi", "  ", "budi@example.com"},
		{"Budi", "Santoso", ""},
	}
	for _, c := range cases {
		_, err := service.GenerateKey(c[0], c[1], c[2])
		assert.ErrorIs(t, err, ErrMissingFields)
	}
}

func TestAPIKeyService_SaveUser(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	key, err := service.GenerateKey("Budi", "Santoso", "budi@example.com")
	require.NoError(t, err)

	user, err := service.SaveUser(SaveUserInput{
		Firstname: "Budi",
		Lastname:  "Santoso",
		Email:     "budi@example.com",
		APIKey:    key,
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotZero(t, user.APIKeyID)

	stored, err := store.GetAPIKeyByValue(key)
	require.NoError(t, err)
	assert.Equal(t, domain.KeyStatusActive, stored.Status)
	require.NotNil(t, stored.ExpiredAt)

	// 过期时间 = 创建时间 + 30 天
	assert.Equal(t, stored.CreatedAt.Add(30*24*time.Hour), *stored.ExpiredAt)
}

func TestAPIKeyService_SaveUser_MissingKey(t *testing.T) {
	service := newTestService(memory.NewStore())

	_, err := service.SaveUser(SaveUserInput{
		Firstname: "Budi",
		Lastname:  "Santoso",
		Email:     "budi@example.com",
	})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAPIKeyService_SaveThenDelete_NoOrphans(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	key, err := service.GenerateKey("Budi", "Santoso", "budi@example.com")
	require.NoError(t, err)

	user, err := service.SaveUser(SaveUserInput{
		Firstname: "Budi", Lastname: "Santoso", Email: "budi@example.com", APIKey: key,
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(user.ID))

	// 密钥表与用户表都不残留任何行
	_, err = store.GetUserByID(user.ID)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	_, err = store.GetAPIKeyByValue(key)
	assert.ErrorIs(t, err, storage.ErrAPIKeyNotFound)

	rows, err := service.Dashboard()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAPIKeyService_DeleteUser_NotFound(t *testing.T) {
	service := newTestService(memory.NewStore())

	err := service.DeleteUser(42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAPIKeyService_ValidateKey_Fresh(t *testing.T) {
	service := newTestService(memory.NewStore())

	key, err := service.GenerateKey("Budi", "Santoso", "budi@example.com")
	require.NoError(t, err)
	_, err = service.SaveUser(SaveUserInput{
		Firstname: "Budi", Lastname: "Santoso", Email: "budi@example.com", APIKey: key,
	})
	require.NoError(t, err)

	result, err := service.ValidateKey(key)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.NotNil(t, result.CreatedAt)
}

func TestAPIKeyService_ValidateKey_Unknown(t *testing.T) {
	service := newTestService(memory.NewStore())

	result, err := service.ValidateKey("definitely-not-a-key")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Nil(t, result.CreatedAt)

	result, err = service.ValidateKey("")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestAPIKeyService_ValidateKey_Expired(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	expired := time.Now().Add(-time.Minute)
	key := &domain.APIKey{
		Value:     "sk-sm-v1-EXPIRED",
		Status:    domain.KeyStatusActive,
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiredAt: &expired,
	}
	require.NoError(t, store.SaveAPIKey(key))

	result, err := service.ValidateKey("sk-sm-v1-EXPIRED")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestAPIKeyService_ValidateKey_Inactive(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	live := time.Now().Add(time.Hour)
	key := &domain.APIKey{
		Value:     "sk-sm-v1-DISABLED",
		Status:    domain.KeyStatusInactive,
		CreatedAt: time.Now(),
		ExpiredAt: &live,
	}
	require.NoError(t, store.SaveAPIKey(key))

	result, err := service.ValidateKey("sk-sm-v1-DISABLED")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestAPIKeyService_Dashboard_Order(t *testing.T) {
	service := newTestService(memory.NewStore())

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		key, err := service.GenerateKey("U", "Ser", email)
		require.NoError(t, err)
		_, err = service.SaveUser(SaveUserInput{Firstname: "U", Lastname: "Ser", Email: email, APIKey: key})
		require.NoError(t, err)
	}

	rows, err := service.Dashboard()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "c@example.com", rows[0].Email)
	assert.Equal(t, "a@example.com", rows[2].Email)
}
