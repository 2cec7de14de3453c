package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leisuretimez/config"
	"leisuretimez/internal/auth"
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"
	"leisuretimez/pkg/cache"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists       = errors.New("A user with that email already exists")
	ErrInvalidCreds      = errors.New("Invalid credentials")
	ErrInactiveAccount   = errors.New("Account is not active. Please check your email for the activation link")
	ErrTooManyAttempts   = errors.New("Too many failed login attempts. Try again later")
	ErrWrongPassword     = errors.New("Incorrect old password")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrInvalidActivation = errors.New("Activation link is invalid or has expired")
	ErrInvalidResetLink  = errors.New("Reset link is invalid or has expired")
	ErrUserNotFound      = errors.New("user not found")
)

const minPasswordLen = 8

type RegisterInput struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
}

// Session is what a successful sign-in hands back.
type Session struct {
	User         *models.User
	Profile      *models.CustomerProfile
	Wallet       *models.Wallet
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	cfg      *config.Config
	db       *gorm.DB
	userRepo *repository.UserRepository
	profiles *repository.ProfileRepository
	audit    *repository.AuditLogRepository
	wallets  *WalletService
	mail     *MailService
	attempts cache.Counter
}

func NewAuthService(cfg *config.Config, db *gorm.DB, userRepo *repository.UserRepository, profiles *repository.ProfileRepository,
	audit *repository.AuditLogRepository, wallets *WalletService, mail *MailService, attempts cache.Counter) *AuthService {
	return &AuthService{cfg: cfg, db: db, userRepo: userRepo, profiles: profiles, audit: audit, wallets: wallets, mail: mail, attempts: attempts}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func roleOf(u *models.User) string {
	if u.IsStaff {
		return auth.RoleStaff
	}
	return auth.RoleCustomer
}

func (s *AuthService) tokens(u *models.User) (string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, roleOf(u))
	if err != nil {
		return "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Register creates an inactive account with its profile and mails the activation link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := normalizeEmail(in.Email)
	if len(in.Password) < minPasswordLen {
		return nil, "", ErrWeakPassword
	}
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := &models.User{
		Email:            email,
		Firstname:        strings.TrimSpace(in.Firstname),
		Lastname:         strings.TrimSpace(in.Lastname),
		PasswordHash:     string(hash),
		IsActive:         false,
		Status:           domain.StatusActive,
		ActivationSentAt: time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(u); err != nil {
			return err
		}
		return tx.Create(&models.CustomerProfile{UserID: u.ID, Status: domain.StatusActive}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailExists
		}
		return nil, "", err
	}
	s.sendActivation(ctx, u)
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, roleOf(u))
	if err != nil {
		return u, "", err
	}
	return u, access, nil
}

func (s *AuthService) sendActivation(ctx context.Context, u *models.User) {
	if s.mail == nil {
		return
	}
	tok, err := auth.GenerateActionToken(&s.cfg.JWT, auth.PurposeActivate, u.ID, "", auth.ActivationExpiry)
	if err != nil {
		log.WithError(err).WithField("user_id", u.ID).Error("activation token")
		return
	}
	link := fmt.Sprintf("%s/api/v1/activate/%d/%s", s.cfg.Server.SiteURL, u.ID, tok)
	if err := s.mail.SendActivation(ctx, u, link); err != nil {
		log.WithError(err).WithField("user_id", u.ID).Error("send activation email")
	}
}

// Activate marks the account active when the emailed token checks out.
func (s *AuthService) Activate(userID uint, token string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return ErrInvalidActivation
	}
	if _, err := auth.ParseActionToken(&s.cfg.JWT, token, auth.PurposeActivate, u.ID); err != nil {
		return ErrInvalidActivation
	}
	if u.IsActive {
		return nil
	}
	u.IsActive = true
	return s.userRepo.Update(u)
}

func loginKey(email string) string {
	return "login_attempts:" + email
}

// Login checks credentials with a per-email lockout. Every failure inside the window
// counts; once the limit is reached further attempts are refused until it expires.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	key := loginKey(email)
	if n, err := s.attempts.Get(ctx, key); err == nil && n >= int64(s.cfg.Lockout.MaxAttempts) {
		return nil, ErrTooManyAttempts
	}
	u, err := s.userRepo.GetByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		if _, err := s.attempts.Incr(ctx, key, s.cfg.Lockout.Window); err != nil {
			log.WithError(err).Warn("count failed login")
		}
		return nil, ErrInvalidCreds
	}
	if !u.IsActive {
		return nil, ErrInactiveAccount
	}
	if err := s.attempts.Reset(ctx, key); err != nil {
		log.WithError(err).Warn("reset login attempts")
	}
	return s.session(ctx, u)
}

// session makes sure profile and wallet exist and issues tokens.
func (s *AuthService) session(ctx context.Context, u *models.User) (*Session, error) {
	profile, err := s.profiles.GetOrCreate(u.ID)
	if err != nil {
		return nil, err
	}
	w, err := s.wallets.EnsureWallet(ctx, u)
	if err != nil {
		return nil, err
	}
	access, refresh, err := s.tokens(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Profile: profile, Wallet: w, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Refresh(refreshToken string) (string, string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || !u.IsActive {
		return "", "", auth.ErrInvalidToken
	}
	return s.tokens(u)
}

// ChangePassword verifies the old password and returns a fresh access token.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) (string, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", ErrUserNotFound
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return "", ErrWrongPassword
	}
	if err := s.setPassword(u, newPassword); err != nil {
		return "", err
	}
	access, _, err := s.tokens(u)
	return access, err
}

func (s *AuthService) setPassword(u *models.User, password string) error {
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.userRepo.Update(u)
}

// RequestPasswordReset mails a reset link if the account exists. The caller answers the
// same way either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	u, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil || s.mail == nil {
		return
	}
	tok, err := auth.GenerateActionToken(&s.cfg.JWT, auth.PurposeReset, u.ID, auth.PasswordStamp(u.PasswordHash), auth.ResetExpiry)
	if err != nil {
		log.WithError(err).WithField("user_id", u.ID).Error("reset token")
		return
	}
	link := fmt.Sprintf("%s/reset-password/%d/%s", s.cfg.Server.FrontendURL, u.ID, tok)
	if err := s.mail.SendPasswordReset(ctx, u, link); err != nil {
		log.WithError(err).WithField("user_id", u.ID).Error("send reset email")
	}
}

// ResendActivation re-sends the activation mail to inactive accounts only.
func (s *AuthService) ResendActivation(ctx context.Context, email string) {
	u, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil || u.IsActive {
		return
	}
	s.sendActivation(ctx, u)
	u.ActivationSentAt = time.Now()
	if err := s.userRepo.Update(u); err != nil {
		log.WithError(err).WithField("user_id", u.ID).Warn("stamp activation resend")
	}
}

// ConfirmPasswordReset sets a new password. Tokens die once the password changes.
func (s *AuthService) ConfirmPasswordReset(userID uint, token, password string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return ErrInvalidResetLink
	}
	claims, err := auth.ParseActionToken(&s.cfg.JWT, token, auth.PurposeReset, u.ID)
	if err != nil || claims.Stamp != auth.PasswordStamp(u.PasswordHash) {
		return ErrInvalidResetLink
	}
	return s.setPassword(u, password)
}

// DeleteAccount keeps a deletion record, deactivates the wallet and anonymises the user
// before soft-deleting it.
func (s *AuthService) DeleteAccount(userID uint, password, reason string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if u.PasswordHash != "" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	var phone string
	if p, err := s.profiles.GetByUserID(u.ID); err == nil {
		phone = p.Phone
	}
	joined := u.CreatedAt
	return s.db.Transaction(func(tx *gorm.DB) error {
		entry := &models.AccountDeletionLog{
			UserID:     u.ID,
			Email:      u.Email,
			Firstname:  u.Firstname,
			Lastname:   u.Lastname,
			Phone:      phone,
			DateJoined: &joined,
			Reason:     reason,
		}
		wallets := s.wallets.wallets.WithTx(tx)
		w, err := wallets.GetByUserID(u.ID)
		switch {
		case err == nil:
			entry.WalletBalanceCents = w.BalanceCents
			w.IsActive = false
			if err := wallets.Update(w); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		users := s.userRepo.WithTx(tx)
		u.Email = fmt.Sprintf("deleted-%d@deleted.invalid", u.ID)
		u.Firstname = "Deleted"
		u.Lastname = "User"
		u.PasswordHash = ""
		u.GoogleID = nil
		u.IsActive = false
		u.Status = "deleted"
		if err := users.Update(u); err != nil {
			return err
		}
		return users.Delete(u)
	})
}

// LoginWithGoogle finds the account by Google ID, links an existing email account, or
// creates a new active one. isNew reports the last case.
func (s *AuthService) LoginWithGoogle(ctx context.Context, googleID, email, firstname, lastname string) (*Session, bool, error) {
	u, err := s.userRepo.GetByGoogleID(googleID)
	if err == nil {
		if !u.IsActive {
			return nil, false, ErrInactiveAccount
		}
		sess, err := s.session(ctx, u)
		return sess, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	gid := googleID
	if existing, err := s.userRepo.GetByEmail(normalizeEmail(email)); err == nil {
		existing.GoogleID = &gid
		// google has verified the address
		existing.IsActive = true
		if err := s.userRepo.Update(existing); err != nil {
			return nil, false, err
		}
		sess, err := s.session(ctx, existing)
		return sess, false, err
	}
	u = &models.User{
		Email:     normalizeEmail(email),
		Firstname: firstname,
		Lastname:  lastname,
		GoogleID:  &gid,
		IsActive:  true,
		Status:    domain.StatusActive,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, false, err
	}
	sess, err := s.session(ctx, u)
	return sess, true, err
}

func (s *AuthService) Audit(userID uint, action, ip, userAgent string) {
	if s.audit == nil {
		return
	}
	uid := userID
	if err := s.audit.Create(&models.AuditLog{UserID: &uid, Action: action, Resource: "auth", IP: ip, UserAgent: userAgent}); err != nil {
		log.WithError(err).WithField("action", action).Warn("audit log")
	}
}

func (s *AuthService) GetUser(userID uint) (*models.User, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
