package services

import (
	"testing"

	"sessionpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestDB(t), "test-secret")
}

func register(t *testing.T, s *AuthService, email, accountType string) *models.User {
	t.Helper()
	user, token, err := s.Register(&RegisterRequest{
		Email:       email,
		Password:    "hunter22",
		AccountType: accountType,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user
}

func TestRegisterDefaultsToGroupLead(t *testing.T) {
	s := newAuthService(t)

	user := register(t, s, "lead@example.com", "")
	assert.Equal(t, models.RoleGroupLead, user.Role)

	facilitator := register(t, s, "fac@example.com", models.RoleFacilitator)
	assert.Equal(t, models.RoleFacilitator, facilitator.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newAuthService(t)
	register(t, s, "lead@example.com", "")

	_, _, err := s.Register(&RegisterRequest{Email: "lead@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	s := newAuthService(t)
	register(t, s, "lead@example.com", "")

	user, token, err := s.Login(&LoginRequest{Email: "lead@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "lead@example.com", user.Email)

	_, _, err = s.Login(&LoginRequest{Email: "lead@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(&LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginRedirectsAdmins(t *testing.T) {
	s := newAuthService(t)
	user := register(t, s, "admin@example.com", "")
	_, err := s.UpdateUserRole(user.ID, models.RoleAdmin)
	require.NoError(t, err)

	_, _, err = s.Login(&LoginRequest{Email: "admin@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrIsAdmin)

	admin, token, err := s.AdminLogin(&LoginRequest{Email: "admin@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestAdminLoginRejectsNonAdmins(t *testing.T) {
	s := newAuthService(t)
	register(t, s, "lead@example.com", "")

	_, _, err := s.AdminLogin(&LoginRequest{Email: "lead@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newAuthService(t)
	register(t, s, "lead@example.com", "")

	token, role, err := s.IssueResetToken("lead@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleGroupLead, role)

	role, err = s.ResetPassword(token, "newpassword")
	require.NoError(t, err)
	assert.Equal(t, models.RoleGroupLead, role)

	_, _, err = s.Login(&LoginRequest{Email: "lead@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(&LoginRequest{Email: "lead@example.com", Password: "newpassword"})
	require.NoError(t, err)
}

func TestResetPasswordRejectsLoginToken(t *testing.T) {
	s := newAuthService(t)
	register(t, s, "lead@example.com", "")

	// A login token isn't a reset token, even though both are signed by us.
	_, loginToken, err := s.Login(&LoginRequest{Email: "lead@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = s.ResetPassword(loginToken, "newpassword")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestUpdateUserRoleIgnoresUnknownRole(t *testing.T) {
	s := newAuthService(t)
	user := register(t, s, "lead@example.com", "")

	updated, err := s.UpdateUserRole(user.ID, "superuser")
	require.NoError(t, err)
	assert.Equal(t, models.RoleGroupLead, updated.Role)

	_, err = s.UpdateUserRole(404, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	s := newAuthService(t)
	user := register(t, s, "lead@example.com", "")

	require.NoError(t, s.DeleteUser(user.ID))
	assert.ErrorIs(t, s.DeleteUser(user.ID), ErrUserNotFound)
}
