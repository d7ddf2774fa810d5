package dao

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not connect to docker: %v", err)
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=rewards_test",
	})
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	dsn := fmt.Sprintf(
		"host=localhost port=%v user=postgres password=secret dbname=rewards_test sslmode=disable",
		resource.GetPort("5432/tcp"),
	)

	if err = pool.Retry(func() error {
		testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return err
		}

		sqlDB, err := testDB.DB()
		if err != nil {
			return err
		}

		return sqlDB.Ping()
	}); err != nil {
		log.Fatalf("could not connect to postgres: %v", err)
	}

	if err = InitTables(testDB); err != nil {
		log.Fatalf("could not migrate tables: %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Fatalf("could not purge postgres container: %v", err)
	}

	os.Exit(code)
}

func hashTestCode(code string) string {
	sum := sha256.Sum256([]byte(code))

	return hex.EncodeToString(sum[:])
}

func createTestPlumber(t *testing.T, email string) Plumber {
	t.Helper()

	userDAO := NewUserDAO(testDB)
	_, plumber, err := userDAO.InsertWithPlumber(context.Background(), User{
		Email:    email,
		Password: "hashed",
		Role:     "plumber",
		Name:     "Test Plumber",
	})
	require.NoError(t, err)

	return plumber
}

func issueTestCode(t *testing.T, code string, expiresAt time.Time) {
	t.Helper()

	require.NoError(t, NewRedemptionDAO(testDB).InsertCode(context.Background(), hashTestCode(code), expiresAt))
}

func TestInsertWithPlumberAssignsSequentialPIDs(t *testing.T) {
	ctx := context.Background()
	userDAO := NewUserDAO(testDB)

	_, first, err := userDAO.InsertWithPlumber(ctx, User{
		Email: "pid-first@example.com", Password: "x", Role: "plumber", Name: "First",
	})
	require.NoError(t, err)

	_, second, err := userDAO.InsertWithPlumber(ctx, User{
		Email: "pid-second@example.com", Password: "x", Role: "plumber", Name: "Second",
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, first.PID, "1001")
	require.Equal(t, fmt.Sprintf("%v", atoi(t, first.PID)+1), second.PID)
	require.Zero(t, first.Tokens)
}

func atoi(t *testing.T, s string) int {
	t.Helper()

	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	require.NoError(t, err)

	return n
}

func TestConcurrentSignupsGetDistinctPIDs(t *testing.T) {
	ctx := context.Background()
	userDAO := NewUserDAO(testDB)

	const signups = 4

	var wg sync.WaitGroup
	results := make(chan Plumber, signups)
	errs := make(chan error, signups)
	for i := 0; i < signups; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, plumber, err := userDAO.InsertWithPlumber(ctx, User{
				Email:    fmt.Sprintf("race-%d@example.com", n),
				Password: "x",
				Role:     "plumber",
				Name:     fmt.Sprintf("Racer %d", n),
			})
			results <- plumber
			errs <- err
		}(i)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for plumber := range results {
		require.False(t, seen[plumber.PID], "pid %v assigned twice", plumber.PID)
		seen[plumber.PID] = true
	}
}

func TestInsertWithPlumberDuplicateEmailRollsBack(t *testing.T) {
	ctx := context.Background()
	userDAO := NewUserDAO(testDB)

	user := User{Email: "dup@example.com", Password: "x", Role: "plumber", Name: "Dup"}

	_, _, err := userDAO.InsertWithPlumber(ctx, user)
	require.NoError(t, err)

	var plumbersBefore int64
	require.NoError(t, testDB.Model(&Plumber{}).Count(&plumbersBefore).Error)

	_, _, err = userDAO.InsertWithPlumber(ctx, user)
	require.ErrorIs(t, err, ErrUserEmailExists)

	var plumbersAfter int64
	require.NoError(t, testDB.Model(&Plumber{}).Count(&plumbersAfter).Error)
	require.Equal(t, plumbersBefore, plumbersAfter)
}

func TestCreditWritesLedger(t *testing.T) {
	ctx := context.Background()
	plumber := createTestPlumber(t, "credit@example.com")
	plumberDAO := NewPlumberDAO(testDB)

	updated, err := plumberDAO.Credit(ctx, plumber.ID, 20, "20 PCS 4-Way Concealed Divertor")
	require.NoError(t, err)
	require.Equal(t, 20, updated.Tokens)
	require.Equal(t, 20, updated.TotalEarned)

	transactions, err := plumberDAO.FindTransactionsByPlumberID(ctx, plumber.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.Equal(t, "earned", transactions[0].Type)
	require.Equal(t, 20, transactions[0].Tokens)
}

func TestCreditUnknownPlumber(t *testing.T) {
	_, err := NewPlumberDAO(testDB).Credit(context.Background(), 999999, 5, "x")
	require.ErrorIs(t, err, ErrPlumberNotFound)
}

func TestConcurrentCreditsBothLand(t *testing.T) {
	ctx := context.Background()
	plumber := createTestPlumber(t, "concurrent@example.com")
	plumberDAO := NewPlumberDAO(testDB)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := plumberDAO.Credit(ctx, plumber.ID, 5, "batch")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reloaded, err := plumberDAO.FindByID(ctx, plumber.ID)
	require.NoError(t, err)
	require.Equal(t, 10, reloaded.Tokens)
	require.Equal(t, 10, reloaded.TotalEarned)
}

func TestRedeemFlow(t *testing.T) {
	ctx := context.Background()
	plumber := createTestPlumber(t, "redeem@example.com")
	plumberDAO := NewPlumberDAO(testDB)

	_, err := plumberDAO.Credit(ctx, plumber.ID, 20, "install batch")
	require.NoError(t, err)

	issueTestCode(t, "111111", time.Now().Add(time.Hour))

	redemption, err := plumberDAO.Redeem(ctx, plumber.ID, "Single Door Fridge", 20, hashTestCode("111111"))
	require.NoError(t, err)
	require.Equal(t, "pending", redemption.Status)
	require.Equal(t, 20, redemption.TokensUsed)

	reloaded, err := plumberDAO.FindByID(ctx, plumber.ID)
	require.NoError(t, err)
	require.Zero(t, reloaded.Tokens)
	require.Equal(t, 20, reloaded.TotalEarned)
	require.Equal(t, 20, reloaded.TotalRedeemed)
	require.Equal(t, reloaded.Tokens, reloaded.TotalEarned-reloaded.TotalRedeemed)

	transactions, err := plumberDAO.FindTransactionsByPlumberID(ctx, plumber.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
}

func TestRedeemInsufficientTokensLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	plumber := createTestPlumber(t, "broke@example.com")
	plumberDAO := NewPlumberDAO(testDB)

	_, err := plumberDAO.Credit(ctx, plumber.ID, 3, "small batch")
	require.NoError(t, err)

	issueTestCode(t, "222222", time.Now().Add(time.Hour))

	_, err = plumberDAO.Redeem(ctx, plumber.ID, "Smart Watch", 5, hashTestCode("222222"))
	require.ErrorIs(t, err, ErrInsufficientTokens)

	reloaded, err := plumberDAO.FindByID(ctx, plumber.ID)
	require.NoError(t, err)
	require.Equal(t, 3, reloaded.Tokens)

	redemptions, err := NewRedemptionDAO(testDB).FindByPlumberID(ctx, plumber.ID)
	require.NoError(t, err)
	require.Empty(t, redemptions)

	// The whole transaction rolled back, so the code is still usable.
	_, err = plumberDAO.Redeem(ctx, plumber.ID, "Smart Watch", 3, hashTestCode("222222"))
	require.NoError(t, err)
}

func TestRedeemUnknownCode(t *testing.T) {
	ctx := context.Background()
	plumber := createTestPlumber(t, "nocode@example.com")
	plumberDAO := NewPlumberDAO(testDB)

	_, err := plumberDAO.Credit(ctx, plumber.ID, 10, "batch")
	require.NoError(t, err)

	_, err = plumberDAO.Redeem(ctx, plumber.ID, "Smart Watch", 5, hashTestCode("999999"))
	require.ErrorIs(t, err, ErrInvalidRedemptionCode)
}

func TestRedeemCodeSingleUse(t *testing.T) {
	ctx := context.Background()
	plumber := createTestPlumber(t, "singleuse@example.com")
	plumberDAO := NewPlumberDAO(testDB)

	_, err := plumberDAO.Credit(ctx, plumber.ID, 20, "batch")
	require.NoError(t, err)

	issueTestCode(t, "333333", time.Now().Add(time.Hour))

	_, err = plumberDAO.Redeem(ctx, plumber.ID, "Smart Watch", 5, hashTestCode("333333"))
	require.NoError(t, err)

	_, err = plumberDAO.Redeem(ctx, plumber.ID, "Smart Watch", 5, hashTestCode("333333"))
	require.ErrorIs(t, err, ErrInvalidRedemptionCode)
}

func TestRedeemCodeExpired(t *testing.T) {
	ctx := context.Background()
	plumber := createTestPlumber(t, "expired@example.com")
	plumberDAO := NewPlumberDAO(testDB)

	_, err := plumberDAO.Credit(ctx, plumber.ID, 10, "batch")
	require.NoError(t, err)

	issueTestCode(t, "444444", time.Now().Add(-time.Minute))

	_, err = plumberDAO.Redeem(ctx, plumber.ID, "Smart Watch", 5, hashTestCode("444444"))
	require.ErrorIs(t, err, ErrInvalidRedemptionCode)
}

func TestAdvanceStatusGuards(t *testing.T) {
	ctx := context.Background()
	plumber := createTestPlumber(t, "advance@example.com")
	plumberDAO := NewPlumberDAO(testDB)
	redemptionDAO := NewRedemptionDAO(testDB)

	_, err := plumberDAO.Credit(ctx, plumber.ID, 10, "batch")
	require.NoError(t, err)

	issueTestCode(t, "555555", time.Now().Add(time.Hour))

	redemption, err := plumberDAO.Redeem(ctx, plumber.ID, "Smart Watch", 5, hashTestCode("555555"))
	require.NoError(t, err)

	require.NoError(t, redemptionDAO.AdvanceStatus(ctx, redemption.ID, "pending", "approved"))

	// A second session still holding the pending snapshot loses the race.
	err = redemptionDAO.AdvanceStatus(ctx, redemption.ID, "pending", "approved")
	require.ErrorIs(t, err, ErrRedemptionStatusConflict)

	require.NoError(t, redemptionDAO.AdvanceStatus(ctx, redemption.ID, "approved", "delivered"))

	err = redemptionDAO.AdvanceStatus(ctx, 999999, "pending", "approved")
	require.ErrorIs(t, err, ErrRedemptionNotFound)
}

func TestSeedDealer(t *testing.T) {
	ctx := context.Background()
	userDAO := NewUserDAO(testDB)

	require.NoError(t, SeedDealer(testDB, "missing-dealer@example.com"))

	created, err := userDAO.Insert(ctx, User{
		Email: "dealer@example.com", Password: "x", Role: "plumber", Name: "Dealer",
	})
	require.NoError(t, err)

	require.NoError(t, SeedDealer(testDB, "dealer@example.com"))

	reloaded, err := userDAO.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "dealer", reloaded.Role)
}
