package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/policy"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// bcrypt ignores input past this length, so longer passwords are rejected.
const maxPasswordBytes = 72

// AccountService implements the identity store gateway behind the access
// decision point.
type AccountService struct {
	repo   ports.AccountRepository
	cache  ports.ViewCache
	cost   int
	logger zerolog.Logger

	// dummyHash is compared against when the username is unknown so that
	// Authenticate costs the same whether or not the account exists.
	dummyHash []byte
}

// NewAccountService wires the service. cache may be nil. A cost outside
// bcrypt's range falls back to bcrypt.DefaultCost.
func NewAccountService(repo ports.AccountRepository, cache ports.ViewCache, cost int, logger zerolog.Logger) *AccountService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("timing-guard"), cost)
	return &AccountService{
		repo:      repo,
		cache:     cache,
		cost:      cost,
		logger:    logger,
		dummyHash: dummy,
	}
}

var (
	_ ports.AccountService = (*AccountService)(nil)
	_ ports.Authenticator  = (*AccountService)(nil)
)

// Register creates a new account. A taken username is reported as
// ALREADY_EXISTS without any write; the insert itself is the uniqueness
// authority, so a concurrent registration that slips past the lookup still
// resolves to ALREADY_EXISTS.
func (s *AccountService) Register(ctx context.Context, caller domain.Caller, in ports.RegisterInput) (*ports.Result, error) {
	role, err := validateRegistration(in)
	if err != nil {
		return nil, err
	}

	if d := policy.Decide(caller, domain.OpRegister, in.Username); d.Denied() {
		return s.denied(caller, domain.OpRegister, in.Username, d), nil
	}

	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		s.logger.Info().Str("username", in.Username).Msg("registration rejected: username taken")
		return &ports.Result{Outcome: domain.OutcomeAlreadyExists}, nil
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: hash credential: %w", err)
	}

	account := &domain.Account{
		Username:       in.Username,
		CredentialHash: string(hash),
		Role:           role,
		EmailID:        strings.TrimSpace(in.EmailID),
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, account); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			s.logger.Info().Str("username", in.Username).Msg("registration rejected: concurrent insert won")
			return &ports.Result{Outcome: domain.OutcomeAlreadyExists}, nil
		}
		s.logger.Error().Err(err).Str("username", in.Username).Msg("failed to insert account")
		return nil, fmt.Errorf("register: insert: %w", err)
	}

	s.forget(ctx, account.Username)
	s.logger.Info().Str("username", account.Username).Str("role", account.Role.String()).Msg("account registered")

	view := account.View()
	return &ports.Result{Outcome: domain.OutcomeCreated, Account: &view}, nil
}

// Fetch returns a single account's public view. The decision point runs
// before any store or cache access, so a denial never reveals whether the
// target exists.
func (s *AccountService) Fetch(ctx context.Context, caller domain.Caller, username string) (*ports.Result, error) {
	if err := requireUsername(username); err != nil {
		return nil, err
	}

	if d := policy.Decide(caller, domain.OpFetchOne, username); d.Denied() {
		return s.denied(caller, domain.OpFetchOne, username, d), nil
	}

	if view, ok := s.cached(ctx, username); ok {
		return &ports.Result{Outcome: domain.OutcomeFound, Account: view}, nil
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return &ports.Result{Outcome: domain.OutcomeNotFound}, nil
		}
		return nil, fmt.Errorf("fetch: %w", err)
	}

	view := account.View()
	s.remember(ctx, view)
	return &ports.Result{Outcome: domain.OutcomeFound, Account: &view}, nil
}

// List returns every account. An empty store is still FOUND.
func (s *AccountService) List(ctx context.Context, caller domain.Caller) (*ports.Result, error) {
	if d := policy.Decide(caller, domain.OpListAll, ""); d.Denied() {
		return s.denied(caller, domain.OpListAll, "", d), nil
	}

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	return &ports.Result{Outcome: domain.OutcomeFound, Accounts: domain.Views(accounts)}, nil
}

// Remove deletes an account. With a cache configured, the username is
// tombstoned first; if that fails nothing is deleted.
func (s *AccountService) Remove(ctx context.Context, caller domain.Caller, username string) (*ports.Result, error) {
	if err := requireUsername(username); err != nil {
		return nil, err
	}

	if d := policy.Decide(caller, domain.OpRemove, username); d.Denied() {
		return s.denied(caller, domain.OpRemove, username, d), nil
	}

	// The tombstone goes in before the delete so no cached view outlives it.
	if s.cache != nil {
		if err := s.cache.Tombstone(ctx, username); err != nil {
			s.logger.Error().Err(err).Str("username", username).Msg("view cache tombstone failed, account kept")
			return nil, fmt.Errorf("remove: tombstone cached view: %w", err)
		}
	}

	if err := s.repo.DeleteByUsername(ctx, username); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return &ports.Result{Outcome: domain.OutcomeNotFound}, nil
		}
		return nil, fmt.Errorf("remove: %w", err)
	}

	s.logger.Info().Str("username", username).Str("removed_by", caller.Username).Msg("account removed")

	return &ports.Result{Outcome: domain.OutcomeRemoved}, nil
}

// Authenticate verifies a username/password pair against the stored hash.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (domain.Caller, error) {
	if username == "" || password == "" {
		return domain.Caller{}, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return domain.Caller{}, domain.ErrInvalidCredentials
		}
		return domain.Caller{}, fmt.Errorf("authenticate: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.CredentialHash), []byte(password)) != nil {
		return domain.Caller{}, domain.ErrInvalidCredentials
	}

	return domain.NewCaller(account.Username, account.Role), nil
}

func (s *AccountService) denied(caller domain.Caller, op domain.Operation, target string, d policy.Decision) *ports.Result {
	s.logger.Warn().
		Str("caller", caller.Username).
		Str("operation", op.String()).
		Str("target", target).
		Msg("access denied")
	return &ports.Result{Outcome: domain.OutcomeAccessDenied, Message: d.Message}
}

func (s *AccountService) cached(ctx context.Context, username string) (*domain.PublicView, bool) {
	if s.cache == nil {
		return nil, false
	}
	view, ok, err := s.cache.Get(ctx, username)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("view cache read failed, falling back to store")
		return nil, false
	}
	return view, ok
}

func (s *AccountService) remember(ctx context.Context, view domain.PublicView) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Add(ctx, view); err != nil {
		s.logger.Warn().Err(err).Str("username", view.Username).Msg("view cache write failed")
	}
}

func (s *AccountService) forget(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx, username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("view cache clear failed")
	}
}

func validateRegistration(in ports.RegisterInput) (domain.Role, error) {
	ve := domain.NewValidationError()

	if strings.TrimSpace(in.Username) == "" {
		ve.Add("username", "username is required")
	} else if in.Username != strings.TrimSpace(in.Username) {
		ve.Add("username", "username must not have leading or trailing spaces")
	}

	switch {
	case in.Password == "":
		ve.Add("password", "password is required")
	case len(in.Password) > maxPasswordBytes:
		ve.Add("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	var role domain.Role
	if strings.TrimSpace(in.Role) == "" {
		ve.Add("role", "role is required")
	} else {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			ve.Add("role", "role must be one of: ADMIN USER")
		}
		role = r
	}

	return role, ve.OrNil()
}

func requireUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		ve := domain.NewValidationError()
		ve.Add("username", "username is required")
		return ve
	}
	return nil
}
