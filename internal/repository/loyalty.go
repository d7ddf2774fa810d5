package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rajsanitation/orio-rewards/internal/domain"
	"github.com/rajsanitation/orio-rewards/internal/repository/cache"
	"github.com/rajsanitation/orio-rewards/internal/repository/dao"
)

var (
	ErrCacheMiss                = cache.ErrCacheMiss
	ErrPlumberNotFound          = dao.ErrPlumberNotFound
	ErrInsufficientTokens       = dao.ErrInsufficientTokens
	ErrRedemptionNotFound       = dao.ErrRedemptionNotFound
	ErrRedemptionStatusConflict = dao.ErrRedemptionStatusConflict
	ErrInvalidRedemptionCode    = dao.ErrInvalidRedemptionCode
)

type PlumberDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Plumber, error)
	FindByUserID(ctx context.Context, userID uint) (dao.Plumber, error)
	FindAll(ctx context.Context) ([]dao.Plumber, error)
	Credit(ctx context.Context, plumberID uint, amount int, description string) (dao.Plumber, error)
	Redeem(ctx context.Context, plumberID uint, rewardName string, tokenCost int, codeHash string) (dao.Redemption, error)
	FindTransactionsByPlumberID(ctx context.Context, plumberID uint) ([]dao.TokenTransaction, error)
	FindAllTransactions(ctx context.Context) ([]dao.TokenTransaction, error)
}

type RedemptionDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Redemption, error)
	FindByPlumberID(ctx context.Context, plumberID uint) ([]dao.Redemption, error)
	FindAll(ctx context.Context) ([]dao.Redemption, error)
	AdvanceStatus(ctx context.Context, id uint, from, to string) error
	InsertCode(ctx context.Context, codeHash string, expiresAt time.Time) error
}

type LoyaltyRepository struct {
	plumberDAO    PlumberDAO
	redemptionDAO RedemptionDAO
}

func NewLoyaltyRepository(plumberDAO PlumberDAO, redemptionDAO RedemptionDAO) *LoyaltyRepository {
	return &LoyaltyRepository{
		plumberDAO:    plumberDAO,
		redemptionDAO: redemptionDAO,
	}
}

func (r *LoyaltyRepository) GetPlumberByID(ctx context.Context, id uint) (domain.Plumber, error) {
	plumber, err := r.plumberDAO.FindByID(ctx, id)
	if err != nil {
		return domain.Plumber{}, fmt.Errorf("r.plumberDAO.FindByID -> %w", err)
	}

	return plumberDaoToDomain(plumber), nil
}

func (r *LoyaltyRepository) GetPlumberByUserID(ctx context.Context, userID uint) (domain.Plumber, error) {
	plumber, err := r.plumberDAO.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Plumber{}, fmt.Errorf("r.plumberDAO.FindByUserID -> %w", err)
	}

	return plumberDaoToDomain(plumber), nil
}

func (r *LoyaltyRepository) GetAllPlumbers(ctx context.Context) ([]domain.Plumber, error) {
	plumbers, err := r.plumberDAO.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.plumberDAO.FindAll -> %w", err)
	}

	result := make([]domain.Plumber, len(plumbers))
	for i, p := range plumbers {
		result[i] = plumberDaoToDomain(p)
	}

	return result, nil
}

func (r *LoyaltyRepository) Credit(ctx context.Context, plumberID uint, amount int, description string) (domain.Plumber, error) {
	plumber, err := r.plumberDAO.Credit(ctx, plumberID, amount, description)
	if err != nil {
		return domain.Plumber{}, fmt.Errorf("r.plumberDAO.Credit -> %w", err)
	}

	return plumberDaoToDomain(plumber), nil
}

func (r *LoyaltyRepository) Redeem(ctx context.Context, plumberID uint, rewardName string, tokenCost int, codeHash string) (domain.Redemption, error) {
	redemption, err := r.plumberDAO.Redeem(ctx, plumberID, rewardName, tokenCost, codeHash)
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("r.plumberDAO.Redeem -> %w", err)
	}

	return redemptionDaoToDomain(redemption), nil
}

func (r *LoyaltyRepository) GetTransactionsByPlumberID(ctx context.Context, plumberID uint) ([]domain.Transaction, error) {
	transactions, err := r.plumberDAO.FindTransactionsByPlumberID(ctx, plumberID)
	if err != nil {
		return nil, fmt.Errorf("r.plumberDAO.FindTransactionsByPlumberID -> %w", err)
	}

	return transactionsDaoToDomain(transactions), nil
}

func (r *LoyaltyRepository) GetAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	transactions, err := r.plumberDAO.FindAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.plumberDAO.FindAllTransactions -> %w", err)
	}

	return transactionsDaoToDomain(transactions), nil
}

func (r *LoyaltyRepository) GetRedemptionByID(ctx context.Context, id uint) (domain.Redemption, error) {
	redemption, err := r.redemptionDAO.FindByID(ctx, id)
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("r.redemptionDAO.FindByID -> %w", err)
	}

	return redemptionDaoToDomain(redemption), nil
}

func (r *LoyaltyRepository) GetRedemptionsByPlumberID(ctx context.Context, plumberID uint) ([]domain.Redemption, error) {
	redemptions, err := r.redemptionDAO.FindByPlumberID(ctx, plumberID)
	if err != nil {
		return nil, fmt.Errorf("r.redemptionDAO.FindByPlumberID -> %w", err)
	}

	return redemptionsDaoToDomain(redemptions), nil
}

func (r *LoyaltyRepository) GetAllRedemptions(ctx context.Context) ([]domain.Redemption, error) {
	redemptions, err := r.redemptionDAO.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.redemptionDAO.FindAll -> %w", err)
	}

	return redemptionsDaoToDomain(redemptions), nil
}

func (r *LoyaltyRepository) AdvanceRedemptionStatus(ctx context.Context, id uint, from, to string) error {
	if err := r.redemptionDAO.AdvanceStatus(ctx, id, from, to); err != nil {
		return fmt.Errorf("r.redemptionDAO.AdvanceStatus -> %w", err)
	}

	return nil
}

func (r *LoyaltyRepository) CreateRedemptionCode(ctx context.Context, codeHash string, expiresAt time.Time) error {
	if err := r.redemptionDAO.InsertCode(ctx, codeHash, expiresAt); err != nil {
		return fmt.Errorf("r.redemptionDAO.InsertCode -> %w", err)
	}

	return nil
}

func plumberDaoToDomain(p dao.Plumber) domain.Plumber {
	return domain.Plumber{
		ID:            p.ID,
		UserID:        p.UserID,
		Email:         p.Email,
		Name:          p.Name,
		PID:           p.PID,
		Tokens:        p.Tokens,
		TotalEarned:   p.TotalEarned,
		TotalRedeemed: p.TotalRedeemed,
		CreatedAt:     p.CreatedAt,
	}
}

func transactionDaoToDomain(t dao.TokenTransaction) domain.Transaction {
	return domain.Transaction{
		ID:          t.ID,
		PlumberID:   t.PlumberID,
		Type:        domain.TransactionType(t.Type),
		Tokens:      t.Tokens,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		PlumberName: t.Plumber.Name,
		PlumberPID:  t.Plumber.PID,
	}
}

func transactionsDaoToDomain(transactions []dao.TokenTransaction) []domain.Transaction {
	result := make([]domain.Transaction, len(transactions))
	for i, t := range transactions {
		result[i] = transactionDaoToDomain(t)
	}

	return result
}

func redemptionDaoToDomain(r dao.Redemption) domain.Redemption {
	return domain.Redemption{
		ID:          r.ID,
		PlumberID:   r.PlumberID,
		RewardName:  r.RewardName,
		TokensUsed:  r.TokensUsed,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		PlumberName: r.Plumber.Name,
		PlumberPID:  r.Plumber.PID,
	}
}

func redemptionsDaoToDomain(redemptions []dao.Redemption) []domain.Redemption {
	result := make([]domain.Redemption, len(redemptions))
	for i, r := range redemptions {
		result[i] = redemptionDaoToDomain(r)
	}

	return result
}
