package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"candle-shop/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openIntegrationDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}
	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db.DB))
	_, err = db.Exec(`TRUNCATE messages, order_feedbacks, order_items, orders, addresses, products, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func TestIntegrationConcurrentDefaultAddresses(t *testing.T) {
	db := openIntegrationDB(t)
	ctx := context.Background()
	accounts := NewAccounts(db)

	user, err := accounts.CreateAccount(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := accounts.AddAddress(ctx, user.ID, models.Address{
				Name:      fmt.Sprintf("addr %d", i),
				IsDefault: i%2 == 0,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	addresses, err := accounts.ListAddresses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 12)
	defaults := 0
	for _, a := range addresses {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestIntegrationOrderLifecycleAndFeedbackRace(t *testing.T) {
	db := openIntegrationDB(t)
	ctx := context.Background()
	accounts := NewAccounts(db)
	ledger := NewOrders(db, NewCatalog(db))
	gate := NewFeedback(db)

	user, err := accounts.CreateAccount(ctx, "Ann", "ann@example.com", "hash")
	require.NoError(t, err)
	other, err := accounts.CreateAccount(ctx, "Bo", "bo@example.com", "hash")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO products (name, price) VALUES ('Amber Candle', 45.00)`)
	require.NoError(t, err)

	order, err := ledger.PlaceOrder(ctx, user.ID, models.PlaceOrderInput{
		Items: []models.CartLine{{ProductID: 1, Quantity: 1, Price: money("45.00")}},
		Total: money("45.00"),
	})
	require.NoError(t, err)

	got, err := ledger.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Price.Equal(money("45")))

	_, err = ledger.GetOrder(ctx, other.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gate.Submit(ctx, user.ID, order.ID, 5, "great")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, found, err := ledger.UpdateStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)
	require.True(t, found)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gate.Submit(ctx, user.ID, order.ID, 5, "great")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, conflicts)
}

func TestIntegrationSeededReviewsAndInbox(t *testing.T) {
	db := openIntegrationDB(t)
	ctx := context.Background()

	reviews, err := NewReviews(db).Latest(ctx, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, reviews)

	inbox := NewMessages(db)
	first, err := inbox.Create(ctx, models.Message{Name: "Ann", Email: "ann@example.com", Body: "first"})
	require.NoError(t, err)
	second, err := inbox.Create(ctx, models.Message{Name: "Bo", Email: "bo@example.com", Body: "second"})
	require.NoError(t, err)

	all, err := inbox.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	require.NoError(t, inbox.MarkReplied(ctx, first.ID))
	got, err := inbox.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.RepliedAt)
}
