// Package service contains the orchestration managers that compose the
// credential codec, session registry, quiz cache and repositories.
// Managers catch the precise error kinds raised below them and re-raise
// coarse service errors; the precise reason only ever reaches the
// server log, never the external response.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DMlogobardi/Quizy-sub001/internal/auth"
	"github.com/DMlogobardi/Quizy-sub001/internal/cache"
	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/queue"
	"github.com/DMlogobardi/Quizy-sub001/internal/session"
	"github.com/DMlogobardi/Quizy-sub001/internal/utils"
)

// ErrLoginFailed is the only error authenticate exposes; whether the
// user was unknown or the password wrong stays in the log.
var ErrLoginFailed = errors.New("login failed")

// ErrRegisterFailed covers every registration failure; duplicate
// usernames are reported, everything else is logged as a service error.
var ErrRegisterFailed = errors.New("registration failed")

// UserStore is the slice of the persistence collaborator the auth
// manager needs.  *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	Promote(ctx context.Context, id uint64, role model.Role) error
}

// EventPublisher pushes an event onto the broker.  queue.PublishEvent
// satisfies it; a nil publisher disables events.
type EventPublisher func(ctx context.Context, ev queue.QuizEvent) error

// AuthService implements authenticate, register, logout and role
// elevation on top of the session/authorization core.
type AuthService struct {
	users      UserStore
	codec      *auth.Codec
	guard      *auth.Guard
	registry   *session.Registry
	quizzes    *cache.QuizCache
	publish    EventPublisher
	bcryptCost int
}

func NewAuthService(users UserStore, codec *auth.Codec, guard *auth.Guard,
	registry *session.Registry, quizzes *cache.QuizCache, publish EventPublisher, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		codec:      codec,
		guard:      guard,
		registry:   registry,
		quizzes:    quizzes,
		publish:    publish,
		bcryptCost: bcryptCost,
	}
}

// Authenticate verifies the password, mints a credential carrying the
// user's current role and registers it as live.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		log.Printf("auth: login for %q rejected: %v", username, err)
		return "", ErrLoginFailed
	}
	ok, err := utils.VerifyPassword(u.PasswordHash, password)
	if err != nil || !ok {
		log.Printf("auth: login for %q rejected: bad password", username)
		return "", ErrLoginFailed
	}
	cred, err := s.codec.Issue(u.ID, u.Role)
	if err != nil {
		log.Printf("auth: issue credential for user %d failed: %v", u.ID, err)
		return "", ErrLoginFailed
	}
	s.registry.Add(cred, u)
	return cred, nil
}

// Logout revokes the credential.  Revoking an already dead credential
// is a no-op; logout never fails.
func (s *AuthService) Logout(credential string) {
	s.registry.Remove(credential)
}

// RegisterInput is the new-identity record accepted by Register.
type RegisterInput struct {
	Username string
	Password string
}

// Register creates a compiler-role user.  The credential is not issued
// here; the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	if in.Username == "" || in.Password == "" {
		return fmt.Errorf("%w: username and password required", ErrRegisterFailed)
	}
	u := &model.User{
		Username:   in.Username,
		Role:       model.RoleCompiler,
		IsCompiler: true,
	}
	if _, err := s.users.Create(ctx, u, in.Password, s.bcryptCost); err != nil {
		log.Printf("auth: register %q failed: %v", in.Username, err)
		return fmt.Errorf("%w: %w", ErrRegisterFailed, err)
	}
	return nil
}

// ElevateRole upgrades a live compiler credential to a creator one.
// Ordering is deliberate: persist the new role, issue the new
// credential, register it, revoke the old one, drop the role-scoped
// cache partition, and only then acknowledge the new credential.  The
// old credential is dead before the caller ever sees the new one.
func (s *AuthService) ElevateRole(ctx context.Context, credential string) (string, error) {
	if !s.registry.IsAlive(credential) {
		return "", fmt.Errorf("%w: credential revoked", auth.ErrUnauthorized)
	}
	if err := s.guard.RequireRole(credential, model.RoleCompiler); err != nil {
		s.dropIfExpired(credential, err)
		return "", err
	}
	ident, err := s.registry.IdentityOf(credential)
	if err != nil {
		return "", fmt.Errorf("%w: %w", auth.ErrUnauthorized, err)
	}
	// Eligibility comes from the store, not the registry snapshot: the
	// flag may have been granted or withdrawn since login.
	u, err := s.users.FindByID(ctx, ident.ID)
	if err != nil {
		log.Printf("auth: load user %d failed: %v", ident.ID, err)
		return "", fmt.Errorf("elevate role: %w", err)
	}
	if !u.IsCreator {
		return "", fmt.Errorf("%w: user %d not eligible for %s", auth.ErrUnauthorized, u.ID, model.RoleCreator)
	}
	if err := s.users.Promote(ctx, u.ID, model.RoleCreator); err != nil {
		log.Printf("auth: promote user %d failed: %v", u.ID, err)
		return "", fmt.Errorf("elevate role: %w", err)
	}
	// Registry-held identities are shared by every in-flight request for
	// this user and are never written in place; the new credential gets
	// its own elevated copy.
	elevated := *u
	elevated.Role = model.RoleCreator

	newCred, err := s.guard.Elevate(&elevated, model.RoleCreator)
	if err != nil {
		return "", err
	}
	s.registry.Add(newCred, &elevated)
	s.registry.Remove(credential)
	s.quizzes.Clear(elevated.ID)

	s.emit(ctx, queue.QuizEvent{
		Kind:       queue.KindRoleElevated,
		UserID:     elevated.ID,
		Role:       model.RoleCreator.String(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return newCred, nil
}

// dropIfExpired proactively removes the session entry for a credential
// that failed validation because it is past its TTL.
func (s *AuthService) dropIfExpired(credential string, err error) {
	if errors.Is(err, auth.ErrTokenExpired) {
		s.registry.Remove(credential)
	}
}

func (s *AuthService) emit(ctx context.Context, ev queue.QuizEvent) {
	if s.publish == nil {
		return
	}
	if err := s.publish(ctx, ev); err != nil {
		log.Printf("auth: publish %s event failed: %v", ev.Kind, err)
	}
}
