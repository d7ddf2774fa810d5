package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/rajsanitation/orio-rewards/internal/domain"
	"github.com/rajsanitation/orio-rewards/internal/pkg/search"
	"github.com/rajsanitation/orio-rewards/internal/repository"
)

var (
	ErrPlumberNotFound         = repository.ErrPlumberNotFound
	ErrInsufficientBalance     = repository.ErrInsufficientTokens
	ErrRedemptionNotFound      = repository.ErrRedemptionNotFound
	ErrConcurrentModification  = repository.ErrRedemptionStatusConflict
	ErrInvalidRedemptionCode   = repository.ErrInvalidRedemptionCode
	ErrInvalidStatusTransition = errors.New("invalid redemption status transition")
	ErrInvalidAmount           = errors.New("token amount must be positive")
	ErrUnknownReward           = errors.New("unknown reward")
)

type LoyaltyRepository interface {
	GetPlumberByID(ctx context.Context, id uint) (domain.Plumber, error)
	GetPlumberByUserID(ctx context.Context, userID uint) (domain.Plumber, error)
	GetAllPlumbers(ctx context.Context) ([]domain.Plumber, error)
	Credit(ctx context.Context, plumberID uint, amount int, description string) (domain.Plumber, error)
	Redeem(ctx context.Context, plumberID uint, rewardName string, tokenCost int, codeHash string) (domain.Redemption, error)
	GetTransactionsByPlumberID(ctx context.Context, plumberID uint) ([]domain.Transaction, error)
	GetAllTransactions(ctx context.Context) ([]domain.Transaction, error)
	GetRedemptionByID(ctx context.Context, id uint) (domain.Redemption, error)
	GetRedemptionsByPlumberID(ctx context.Context, plumberID uint) ([]domain.Redemption, error)
	GetAllRedemptions(ctx context.Context) ([]domain.Redemption, error)
	AdvanceRedemptionStatus(ctx context.Context, id uint, from, to string) error
	CreateRedemptionCode(ctx context.Context, codeHash string, expiresAt time.Time) error
}

// RosterCache accelerates dealer roster reads. It is best effort: every
// failure is logged and the caller falls through to the repository.
type RosterCache interface {
	GetRoster(ctx context.Context) ([]domain.Plumber, error)
	SetRoster(ctx context.Context, plumbers []domain.Plumber) error
	Invalidate(ctx context.Context) error
}

type Stats struct {
	TotalPlumbers        int `json:"total_plumbers"`
	TotalTokensIssued    int `json:"total_tokens_issued"`
	DeliveredRedemptions int `json:"delivered_redemptions"`
	PendingRedemptions   int `json:"pending_redemptions"`
}

type LoyaltyService struct {
	repo    LoyaltyRepository
	cache   RosterCache
	codeTTL time.Duration
}

func NewLoyaltyService(repo LoyaltyRepository, cache RosterCache, codeTTL time.Duration) *LoyaltyService {
	return &LoyaltyService{
		repo:    repo,
		cache:   cache,
		codeTTL: codeTTL,
	}
}

func (s *LoyaltyService) GetPlumberByUserID(ctx context.Context, userID uint) (domain.Plumber, error) {
	plumber, err := s.repo.GetPlumberByUserID(ctx, userID)
	if err != nil {
		return domain.Plumber{}, fmt.Errorf("s.repo.GetPlumberByUserID -> %w", err)
	}

	return plumber, nil
}

func (s *LoyaltyService) GetTransactions(ctx context.Context, plumberID uint) ([]domain.Transaction, error) {
	transactions, err := s.repo.GetTransactionsByPlumberID(ctx, plumberID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetTransactionsByPlumberID -> %w", err)
	}

	return transactions, nil
}

func (s *LoyaltyService) GetRedemptions(ctx context.Context, plumberID uint) ([]domain.Redemption, error) {
	redemptions, err := s.repo.GetRedemptionsByPlumberID(ctx, plumberID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetRedemptionsByPlumberID -> %w", err)
	}

	return redemptions, nil
}

// Catalog returns the reward catalog gated against the plumber's balance.
func (s *LoyaltyService) Catalog(balance int) []domain.CatalogEntry {
	return domain.CatalogFor(balance)
}

// Credit adds tokens to a plumber's balance with a matching ledger entry.
// The pair commits atomically; there is no partial-earn state.
func (s *LoyaltyService) Credit(ctx context.Context, plumberID uint, amount int, description string) (domain.Plumber, error) {
	if amount <= 0 {
		return domain.Plumber{}, ErrInvalidAmount
	}
	if description == "" {
		description = fmt.Sprintf("%d PCS 4-Way Concealed Divertor", amount)
	}

	plumber, err := s.repo.Credit(ctx, plumberID, amount, description)
	if err != nil {
		return domain.Plumber{}, fmt.Errorf("s.repo.Credit -> %w", err)
	}

	s.invalidateRoster(ctx)

	return plumber, nil
}

// Redeem exchanges tokens for a catalog reward. The balance check, the
// deduction, the pending redemption row, the ledger entry and the one-time
// code consumption all commit in a single transaction, so a stale client
// balance or a double click can never overdraw the account.
func (s *LoyaltyService) Redeem(ctx context.Context, userID uint, rewardName, code string) (domain.Redemption, error) {
	reward, ok := domain.FindReward(rewardName)
	if !ok {
		return domain.Redemption{}, ErrUnknownReward
	}

	plumber, err := s.repo.GetPlumberByUserID(ctx, userID)
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("s.repo.GetPlumberByUserID -> %w", err)
	}

	redemption, err := s.repo.Redeem(ctx, plumber.ID, reward.Name, reward.Tokens, hashCode(code))
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("s.repo.Redeem -> %w", err)
	}

	s.invalidateRoster(ctx)

	return redemption, nil
}

// AdvanceRedemptionStatus moves a redemption forward through
// pending -> approved -> delivered (pending -> delivered is allowed).
// All other transitions are rejected, and a transition raced by another
// session surfaces as a conflict instead of a silent overwrite.
func (s *LoyaltyService) AdvanceRedemptionStatus(ctx context.Context, id uint, newStatus string) (domain.Redemption, error) {
	if !domain.IsRedemptionStatus(newStatus) {
		return domain.Redemption{}, ErrInvalidStatusTransition
	}

	redemption, err := s.repo.GetRedemptionByID(ctx, id)
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("s.repo.GetRedemptionByID -> %w", err)
	}

	if !redemption.CanTransitionTo(newStatus) {
		return domain.Redemption{}, ErrInvalidStatusTransition
	}

	if err = s.repo.AdvanceRedemptionStatus(ctx, id, redemption.Status, newStatus); err != nil {
		return domain.Redemption{}, fmt.Errorf("s.repo.AdvanceRedemptionStatus -> %w", err)
	}

	redemption.Status = newStatus

	return redemption, nil
}

// IssueRedemptionCode mints a one-time 6-digit code for the dealer to hand
// to a plumber. Only its hash is stored.
func (s *LoyaltyService) IssueRedemptionCode(ctx context.Context) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("rand.Int -> %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	expiresAt := time.Now().Add(s.codeTTL)
	if err = s.repo.CreateRedemptionCode(ctx, hashCode(code), expiresAt); err != nil {
		return "", time.Time{}, fmt.Errorf("s.repo.CreateRedemptionCode -> %w", err)
	}

	return code, expiresAt, nil
}

func (s *LoyaltyService) ListPlumbers(ctx context.Context) ([]domain.Plumber, error) {
	if s.cache != nil {
		plumbers, err := s.cache.GetRoster(ctx)
		if err == nil {
			return plumbers, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			zap.L().Warn("roster cache read failed", zap.Error(err))
		}
	}

	plumbers, err := s.repo.GetAllPlumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAllPlumbers -> %w", err)
	}

	if s.cache != nil {
		if err = s.cache.SetRoster(ctx, plumbers); err != nil {
			zap.L().Warn("roster cache write failed", zap.Error(err))
		}
	}

	return plumbers, nil
}

// SearchPlumbers fuzzy matches the roster on name, PID and email.
func (s *LoyaltyService) SearchPlumbers(ctx context.Context, query string) ([]domain.Plumber, error) {
	plumbers, err := s.ListPlumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.ListPlumbers -> %w", err)
	}

	return search.Plumbers(query, plumbers), nil
}

func (s *LoyaltyService) GetAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	transactions, err := s.repo.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAllTransactions -> %w", err)
	}

	return transactions, nil
}

func (s *LoyaltyService) GetAllRedemptions(ctx context.Context) ([]domain.Redemption, error) {
	redemptions, err := s.repo.GetAllRedemptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAllRedemptions -> %w", err)
	}

	return redemptions, nil
}

func (s *LoyaltyService) GetStats(ctx context.Context) (Stats, error) {
	plumbers, err := s.ListPlumbers(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("s.ListPlumbers -> %w", err)
	}

	redemptions, err := s.repo.GetAllRedemptions(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("s.repo.GetAllRedemptions -> %w", err)
	}

	stats := Stats{
		TotalPlumbers: len(plumbers),
	}
	for _, p := range plumbers {
		stats.TotalTokensIssued += p.TotalEarned
	}
	for _, r := range redemptions {
		switch r.Status {
		case domain.RedemptionDelivered:
			stats.DeliveredRedemptions++
		case domain.RedemptionPending:
			stats.PendingRedemptions++
		}
	}

	return stats, nil
}

func (s *LoyaltyService) invalidateRoster(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		zap.L().Warn("roster cache invalidation failed", zap.Error(err))
	}
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))

	return hex.EncodeToString(sum[:])
}
