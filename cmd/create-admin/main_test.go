package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keysmith/backend/internal/auth"
)

// 带空白的邮箱应被归一化而不是拒绝，与注册接口一致
func TestBuildAdminTrimsFields(t *testing.T) {
	admin, err := buildAdmin("  Admin  ", "  admin@example.com  ", "secret-password")
	require.NoError(t, err)

	assert.Equal(t, "Admin", admin.Name)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.True(t, auth.CheckPassword("secret-password", admin.PasswordHash))
	assert.False(t, admin.CreatedAt.IsZero())
}

func TestBuildAdminRejectsInvalidEmail(t *testing.T) {
	_, err := buildAdmin("Admin", "not-an-email", "secret-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email format")
}
