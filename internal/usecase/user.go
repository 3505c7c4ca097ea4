package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"shramik-backend/internal/model"
	"shramik-backend/internal/notification"
	"shramik-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserUsecase struct {
	users        repository.UserRepository
	tokens       *TokenManager
	sender       Sender
	baseURL      string
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewUserUsecase(users repository.UserRepository, tokens *TokenManager, sender Sender, baseURL string, storeTimeout time.Duration, logger *slog.Logger) *UserUsecase {
	return &UserUsecase{
		users:        users,
		tokens:       tokens,
		sender:       sender,
		baseURL:      strings.TrimRight(baseURL, "/"),
		storeTimeout: storeTimeout,
		logger:       logger.With("component", "user"),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     model.Role
	City     string
	Skills   string
}

type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func (u *UserUsecase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Role != model.RoleEmployer && in.Role != model.RoleWorker {
		return nil, ErrInvalidInput.WithMessage("role must be employer or worker")
	}

	// 1. Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	// 2. Save user
	user := &model.User{
		Name:     in.Name,
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:    in.Phone,
		Password: string(hashed),
		Role:     in.Role,
		City:     in.City,
		Skills:   in.Skills,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeError(err)
	}
	u.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	// 3. Verification mail, best effort
	u.sendVerification(ctx, user)

	return u.issue(user)
}

func (u *UserUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	user, err := u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u.issue(user)
}

// Refresh issues a new token from the stored user, picking up a verification done since login.
func (u *UserUsecase) Refresh(ctx context.Context, caller *Identity) (*AuthResult, error) {
	user, err := u.Profile(ctx, caller)
	if err != nil {
		return nil, err
	}
	return u.issue(user)
}

func (u *UserUsecase) Profile(ctx context.Context, caller *Identity) (*model.User, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	user, err := u.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

type ProfileInput struct {
	Name   *string
	Phone  *string
	City   *string
	Skills *string
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, caller *Identity, in ProfileInput) (*model.User, error) {
	user, err := u.Profile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.City != nil {
		user.City = *in.City
	}
	if in.Skills != nil {
		user.Skills = *in.Skills
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()
	if err := u.users.Update(ctx, user); err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

func (u *UserUsecase) ChangePassword(ctx context.Context, caller *Identity, oldPassword, newPassword string) error {
	user, err := u.Profile(ctx, caller)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials.WithMessage("current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()
	return storeError(u.users.Update(ctx, user))
}

// RequestVerification mails a fresh verification link to the caller.
func (u *UserUsecase) RequestVerification(ctx context.Context, caller *Identity) error {
	user, err := u.Profile(ctx, caller)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	u.sendVerification(ctx, user)
	return nil
}

func (u *UserUsecase) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	userID, email, err := u.tokens.parseVerification(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	// A link sent before an email change must not verify the new address.
	if user.Email != email {
		return nil, ErrInvalidInput.WithMessage("verification link is no longer valid")
	}
	if !user.EmailVerified {
		if err := u.users.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, storeError(err)
		}
		user.EmailVerified = true
		u.logger.InfoContext(ctx, "email verified", "user_id", user.ID)
	}
	return user, nil
}

func (u *UserUsecase) issue(user *model.User) (*AuthResult, error) {
	token, exp, err := u.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (u *UserUsecase) sendVerification(ctx context.Context, user *model.User) {
	if u.sender == nil {
		return
	}
	token, err := u.tokens.issueVerification(user)
	if err != nil {
		u.logger.WarnContext(ctx, "verification token", "user_id", user.ID, "error", err)
		return
	}
	link := u.baseURL + "/api/auth/verify-email?token=" + url.QueryEscape(token)
	u.sender.Send(notification.Message{
		To:      user.Email,
		Subject: "Verify your account",
		Body:    fmt.Sprintf("Hello %s,\n\nOpen this link to verify your account:\n%s\n\nThe link expires in 24 hours.\n", user.Name, link),
	})
}
