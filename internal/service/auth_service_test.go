package service

import (
	"strings"
	"testing"

	"leisuretimez/internal/auth"
	"leisuretimez/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, email, password string) *models.User {
	t.Helper()
	u, token, err := f.auth.Register(t.Context(), RegisterInput{Firstname: " Ada ", Lastname: "Obi", Email: email, Password: password})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return u
}

func activationToken(t *testing.T, f *fixture, u *models.User) string {
	t.Helper()
	tok, err := auth.GenerateActionToken(&f.cfg.JWT, auth.PurposeActivate, u.ID, "", auth.ActivationExpiry)
	require.NoError(t, err)
	return tok
}

func TestRegisterActivateLogin(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "Ada@Example.com ", "supersecret")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada", u.Firstname)
	assert.False(t, u.IsActive)

	msg, ok := f.mail.Last()
	require.True(t, ok)
	assert.Equal(t, []string{"ada@example.com"}, msg.To)
	assert.Contains(t, msg.Text, "/api/v1/activate/")

	_, _, err := f.auth.Register(t.Context(), RegisterInput{Email: "ada@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = f.auth.Login(t.Context(), "ada@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrInactiveAccount)

	assert.ErrorIs(t, f.auth.Activate(u.ID, "bogus"), ErrInvalidActivation)
	require.NoError(t, f.auth.Activate(u.ID, activationToken(t, f, u)))

	sess, err := f.auth.Login(t.Context(), "ADA@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	require.NotNil(t, sess.Wallet)
	require.NotNil(t, sess.Profile)

	claims, err := auth.ParseAccessToken(&f.cfg.JWT, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, auth.RoleCustomer, claims.Role)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.auth.Register(t.Context(), RegisterInput{Email: "ada@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestLoginLockout(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "ada@example.com", "supersecret")
	require.NoError(t, f.auth.Activate(u.ID, activationToken(t, f, u)))

	for i := 0; i < f.cfg.Lockout.MaxAttempts; i++ {
		_, err := f.auth.Login(t.Context(), "ada@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCreds)
	}
	_, err := f.auth.Login(t.Context(), "ada@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	require.NoError(t, f.counter.Reset(t.Context(), loginKey("ada@example.com")))
	_, err = f.auth.Login(t.Context(), "ada@example.com", "supersecret")
	assert.NoError(t, err)
}

func TestLoginUnknownEmailCountsAttempts(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login(t.Context(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	n, err := f.counter.Get(t.Context(), loginKey("ghost@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPasswordResetLinkIsSingleUse(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "ada@example.com", "supersecret")
	require.NoError(t, f.auth.Activate(u.ID, activationToken(t, f, u)))

	f.auth.RequestPasswordReset(t.Context(), "ada@example.com")
	msg, ok := f.mail.Last()
	require.True(t, ok)
	assert.Contains(t, msg.Text, "http://app.test/reset-password/")
	link := msg.Text[strings.Index(msg.Text, "http://app.test/"):]
	link = strings.Fields(link)[0]
	token := link[strings.LastIndex(link, "/")+1:]

	require.NoError(t, f.auth.ConfirmPasswordReset(u.ID, token, "brandnewpass"))
	assert.ErrorIs(t, f.auth.ConfirmPasswordReset(u.ID, token, "anotherpass1"), ErrInvalidResetLink)

	_, err := f.auth.Login(t.Context(), "ada@example.com", "brandnewpass")
	assert.NoError(t, err)
}

func TestResetRequestForUnknownEmailSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.auth.RequestPasswordReset(t.Context(), "ghost@example.com")
	assert.Empty(t, f.mail.Sent)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "ada@example.com", "supersecret")

	_, err := f.auth.ChangePassword(u.ID, "nope", "brandnewpass")
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, err = f.auth.ChangePassword(u.ID, "supersecret", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
	tok, err := f.auth.ChangePassword(u.ID, "supersecret", "brandnewpass")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
}

func TestRefreshRequiresActiveUser(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "ada@example.com", "supersecret")
	refresh, err := auth.GenerateRefreshToken(&f.cfg.JWT, u.ID)
	require.NoError(t, err)

	_, _, err = f.auth.Refresh(refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, f.auth.Activate(u.ID, activationToken(t, f, u)))
	access, next, err := f.auth.Refresh(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, next)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "ada@example.com", "supersecret")
	w := f.walletWith(t, u, 1234)

	assert.ErrorIs(t, f.auth.DeleteAccount(u.ID, "wrong", ""), ErrWrongPassword)
	require.NoError(t, f.auth.DeleteAccount(u.ID, "supersecret", "moving on"))

	_, err := f.auth.GetUser(u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var entry models.AccountDeletionLog
	require.NoError(t, f.db.Where("user_id = ?", u.ID).First(&entry).Error)
	assert.Equal(t, "ada@example.com", entry.Email)
	assert.Equal(t, int64(1234), entry.WalletBalanceCents)
	assert.Equal(t, "moving on", entry.Reason)

	var wallet models.Wallet
	require.NoError(t, f.db.Unscoped().First(&wallet, w.ID).Error)
	assert.False(t, wallet.IsActive)

	// the address is free again
	register(t, f, "ada@example.com", "supersecret")
}

func TestLoginWithGoogle(t *testing.T) {
	f := newFixture(t)
	existing := register(t, f, "ada@example.com", "supersecret")

	sess, created, err := f.auth.LoginWithGoogle(t.Context(), "g-123", "ada@example.com", "Ada", "Obi")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, sess.User.ID)
	assert.True(t, sess.User.IsActive)

	sess, created, err = f.auth.LoginWithGoogle(t.Context(), "g-123", "ada@example.com", "Ada", "Obi")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, sess.User.ID)

	sess, created, err = f.auth.LoginWithGoogle(t.Context(), "g-456", "new@example.com", "New", "Person")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "new@example.com", sess.User.Email)
}
