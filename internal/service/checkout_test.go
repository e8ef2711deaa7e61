package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/linemk/bigshop/internal/domain/models"
	"github.com/linemk/bigshop/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckoutService_PlaceOrder_Success(t *testing.T) {
	// Используем sqlmock для транзакции, репозитории — фиктивные.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	productRepo := newFakeProductRepo()
	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()

	// Товар с остатком 5 и ценой 10.00
	productRepo.products[7] = &models.Product{
		ID:            7,
		Name:          "Coffee Maker",
		Price:         decimal.RequireFromString("10.00"),
		StockQuantity: 5,
	}
	// В корзине пользователя 2 единицы этого товара
	cartRepo.items[1] = []*models.CartItem{
		{
			UserID:        1,
			ProductID:     7,
			Quantity:      2,
			ProductName:   "Coffee Maker",
			Price:         decimal.RequireFromString("10.00"),
			StockQuantity: 5,
		},
	}

	checkoutSvc := service.NewCheckoutService(newTestLogger(), db, cartRepo, productRepo, orderRepo)

	order, err := checkoutSvc.PlaceOrder(context.Background(), 1, "Moscow, Tverskaya 1")
	assert.NoError(t, err, "PlaceOrder should succeed")
	assert.NotNil(t, order)

	// Итог заказа — 2 × 10.00 по цене на момент чтения корзины
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("20.00")),
		"order total should be 20.00, got %s", order.TotalAmount)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, int64(7), order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("10.00")))

	// Остаток списан: 5 - 2 = 3
	assert.Equal(t, 3, productRepo.products[7].StockQuantity)
	// Корзина очищена
	assert.Empty(t, cartRepo.items[1])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutService_PlaceOrder_EmptyCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	checkoutSvc := service.NewCheckoutService(newTestLogger(), db, newFakeCartRepo(), newFakeProductRepo(), newFakeOrderRepo())

	order, err := checkoutSvc.PlaceOrder(context.Background(), 1, "Moscow, Tverskaya 1")
	assert.ErrorIs(t, err, service.ErrEmptyCart)
	assert.Nil(t, order)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutService_PlaceOrder_InsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	productRepo := newFakeProductRepo()
	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()

	// Остаток 3, в корзине 10 — предварительная проверка отклоняет заказ целиком
	productRepo.products[9] = &models.Product{
		ID:            9,
		Name:          "Yoga Mat",
		Price:         decimal.RequireFromString("29.99"),
		StockQuantity: 3,
	}
	cartRepo.items[1] = []*models.CartItem{
		{
			UserID:        1,
			ProductID:     9,
			Quantity:      10,
			ProductName:   "Yoga Mat",
			Price:         decimal.RequireFromString("29.99"),
			StockQuantity: 3,
		},
	}

	checkoutSvc := service.NewCheckoutService(newTestLogger(), db, cartRepo, productRepo, orderRepo)

	order, err := checkoutSvc.PlaceOrder(context.Background(), 1, "Moscow, Tverskaya 1")
	assert.Error(t, err)
	assert.Nil(t, order)

	// Ошибка несёт название товара, которого не хватило
	var stockErr *service.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Yoga Mat", stockErr.Product)

	// Заказ не создан, остаток не тронут, корзина на месте
	assert.Empty(t, orderRepo.orders)
	assert.Equal(t, 3, productRepo.products[9].StockQuantity)
	assert.Len(t, cartRepo.items[1], 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutService_PlaceOrder_LostStockRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	productRepo := newFakeProductRepo()
	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()

	// Снимок в корзине устарел: там остаток 5, но конкурентное оформление
	// уже оставило на складе одну единицу. Предварительная проверка проходит,
	// а условное списание — нет.
	productRepo.products[7] = &models.Product{
		ID:            7,
		Name:          "Coffee Maker",
		Price:         decimal.RequireFromString("10.00"),
		StockQuantity: 1,
	}
	cartRepo.items[1] = []*models.CartItem{
		{
			UserID:        1,
			ProductID:     7,
			Quantity:      2,
			ProductName:   "Coffee Maker",
			Price:         decimal.RequireFromString("10.00"),
			StockQuantity: 5,
		},
	}

	checkoutSvc := service.NewCheckoutService(newTestLogger(), db, cartRepo, productRepo, orderRepo)

	order, err := checkoutSvc.PlaceOrder(context.Background(), 1, "Moscow, Tverskaya 1")
	assert.Error(t, err, "checkout losing the stock race must fail")
	assert.Nil(t, order)

	var stockErr *service.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Coffee Maker", stockErr.Product)

	// Списание не произошло, корзина не очищена
	assert.Equal(t, 1, productRepo.products[7].StockQuantity)
	assert.Len(t, cartRepo.items[1], 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutService_PlaceOrder_ConcurrentLastUnit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Два конкурентных оформления: порядок Begin/Commit/Rollback недетерминирован.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectRollback()

	productRepo := newFakeProductRepo()
	cartRepo := newFakeCartRepo()
	orderRepo := newFakeOrderRepo()

	// Последняя единица товара X
	productRepo.products[5] = &models.Product{
		ID:            5,
		Name:          "Smartphone Pro",
		Price:         decimal.RequireFromString("699.99"),
		StockQuantity: 1,
	}
	for _, userID := range []int64{1, 2} {
		cartRepo.items[userID] = []*models.CartItem{
			{
				UserID:        userID,
				ProductID:     5,
				Quantity:      1,
				ProductName:   "Smartphone Pro",
				Price:         decimal.RequireFromString("699.99"),
				StockQuantity: 1,
			},
		}
	}

	checkoutSvc := service.NewCheckoutService(newTestLogger(), db, cartRepo, productRepo, orderRepo)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = checkoutSvc.PlaceOrder(context.Background(), userID, "Moscow, Tverskaya 1")
		}(i, userID)
	}
	wg.Wait()

	// Ровно одно оформление выигрывает, второе получает InsufficientStock
	var failures int
	for _, err := range errs {
		if err != nil {
			failures++
			var stockErr *service.InsufficientStockError
			assert.ErrorAs(t, err, &stockErr)
		}
	}
	assert.Equal(t, 1, failures, "exactly one of two concurrent checkouts must fail")

	// Остаток никогда не уходит в минус
	assert.Equal(t, 0, productRepo.products[5].StockQuantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}
