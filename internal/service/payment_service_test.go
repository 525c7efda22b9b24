package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gugarden/internal/config"
	"gugarden/internal/events"
	"gugarden/internal/model"
	"gugarden/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	service     PaymentService
	orderRepo   *MockOrderRepository
	userRepo    *MockUserRepository
	productRepo *MockProductRepository
	gateway     *MockGateway
	publisher   *recordingPublisher
	tx          *MockTx
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orderRepo:   new(MockOrderRepository),
		userRepo:    new(MockUserRepository),
		productRepo: new(MockProductRepository),
		gateway:     new(MockGateway),
		publisher:   &recordingPublisher{},
		tx:          new(MockTx),
	}
	cfg := config.PaymentConfig{ClientURL: "https://shop.example", Timeout: time.Second}
	f.service = NewPaymentService(
		f.orderRepo, f.userRepo, f.productRepo, f.gateway, f.publisher, newRecordingCache(), cfg, zerolog.Nop(),
	)
	return f
}

func (f *paymentFixture) assertExpectations(t *testing.T) {
	f.orderRepo.AssertExpectations(t)
	f.userRepo.AssertExpectations(t)
	f.productRepo.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
	f.tx.AssertExpectations(t)
}

func pendingOrder(userID uuid.UUID) *model.Order {
	return &model.Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderNumber: "GG260101ABC123",
		Status:      model.StatusPending,
		TotalAmount: decimal.NewFromInt(23000),
	}
}

func TestPaymentService_Prepare(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	userID := uuid.New()
	order := pendingOrder(userID)
	items := []model.OrderItem{{ProductName: "Monstera"}, {ProductName: "Fern"}}

	f.orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)
	f.orderRepo.On("GetItems", ctx, order.ID).Return(items, nil)
	f.userRepo.On("GetByID", ctx, userID).Return(&model.User{ID: userID, Name: "Kim", Email: "kim@example.com"}, nil)
	f.gateway.On("Prepare", mock.Anything, mock.MatchedBy(func(req payment.PrepareRequest) bool {
		return req.MerchantKey == order.OrderNumber &&
			req.Amount.Equal(order.TotalAmount) &&
			req.OrderName == "Monstera 외 1건" &&
			req.CustomerEmail == "kim@example.com" &&
			req.ReturnURL == "https://shop.example/payment/complete?orderId="+order.ID.String()
	})).Return(&payment.PrepareResult{
		PaymentKey: "reserve_1",
		Payload:    map[string]any{"paymentUrl": "https://pay.example/reserve_1"},
	}, nil)
	f.orderRepo.On("SetPaymentKey", ctx, order.ID, "reserve_1").Return(nil)

	payload, err := f.service.Prepare(ctx, userID, order.ID)

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/reserve_1", payload["paymentUrl"])
	f.assertExpectations(t)
}

func TestPaymentService_Prepare_Rejected(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	tests := []struct {
		name    string
		caller  uuid.UUID
		status  model.OrderStatus
		wantErr error
	}{
		{"already paid", ownerID, model.StatusPaid, model.ErrAlreadyProcessed},
		{"cancelled", ownerID, model.StatusCancelled, model.ErrOrderNotPending},
		{"not the owner", uuid.New(), model.StatusPending, model.ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			order := pendingOrder(ownerID)
			order.Status = tt.status
			f.orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)

			_, err := f.service.Prepare(ctx, tt.caller, order.ID)

			assert.ErrorIs(t, err, tt.wantErr)
			f.gateway.AssertNotCalled(t, "Prepare", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_Approve_Success(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	userID := uuid.New()
	order := pendingOrder(userID)
	amount := decimal.NewFromInt(23000)

	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("GetForUpdate", ctx, f.tx, order.ID).Return(order, nil)
	f.gateway.On("Confirm", mock.Anything, payment.ConfirmRequest{
		MerchantKey: order.OrderNumber,
		PaymentKey:  "pk_live_1",
		Amount:      order.TotalAmount,
	}).Return(&payment.ConfirmResult{PaymentKey: "pk_live_1", Amount: amount}, nil)
	f.orderRepo.On("MarkPaid", ctx, f.tx, order.ID, "pk_live_1", mock.AnythingOfType("time.Time")).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	result, err := f.service.Approve(ctx, userID, &model.PaymentApproveRequest{
		OrderID:    order.ID,
		PaymentKey: "pk_live_1",
		Amount:     &amount,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, order.OrderNumber, result.OrderNumber)
	assert.False(t, result.TestMode)
	assert.Equal(t, []string{events.TypeOrderPaid}, f.publisher.types())
	f.assertExpectations(t)
}

func TestPaymentService_Approve_UsesStoredReference(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	userID := uuid.New()
	order := pendingOrder(userID)
	stored := "reserve_9"
	order.PaymentKey = &stored

	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("GetForUpdate", ctx, f.tx, order.ID).Return(order, nil)
	f.gateway.On("Confirm", mock.Anything, mock.MatchedBy(func(req payment.ConfirmRequest) bool {
		return req.PaymentKey == stored
	})).Return(&payment.ConfirmResult{PaymentKey: stored, Amount: order.TotalAmount}, nil)
	f.orderRepo.On("MarkPaid", ctx, f.tx, order.ID, stored, mock.AnythingOfType("time.Time")).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	_, err := f.service.Approve(ctx, userID, &model.PaymentApproveRequest{OrderID: order.ID})

	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestPaymentService_Approve_Rejected(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		status  model.OrderStatus
		amount  int64
		wantErr error
	}{
		{"duplicate approval", model.StatusPaid, 23000, model.ErrAlreadyProcessed},
		{"cancelled order", model.StatusCancelled, 23000, model.ErrOrderNotPending},
		{"amount differs from total", model.StatusPending, 1000, model.ErrAmountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			userID := uuid.New()
			order := pendingOrder(userID)
			order.Status = tt.status
			amount := decimal.NewFromInt(tt.amount)

			f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
			f.orderRepo.On("GetForUpdate", ctx, f.tx, order.ID).Return(order, nil)
			f.tx.On("Rollback", ctx).Return(nil)

			_, err := f.service.Approve(ctx, userID, &model.PaymentApproveRequest{
				OrderID:    order.ID,
				PaymentKey: "pk",
				Amount:     &amount,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			f.gateway.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
			f.orderRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestPaymentService_Approve_CapturedAmountMismatch(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	userID := uuid.New()
	order := pendingOrder(userID)

	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("GetForUpdate", ctx, f.tx, order.ID).Return(order, nil)
	f.gateway.On("Confirm", mock.Anything, mock.Anything).
		Return(&payment.ConfirmResult{PaymentKey: "pk", Amount: decimal.NewFromInt(100)}, nil)
	f.tx.On("Rollback", ctx).Return(nil)

	_, err := f.service.Approve(ctx, userID, &model.PaymentApproveRequest{OrderID: order.ID, PaymentKey: "pk"})

	assert.ErrorIs(t, err, model.ErrAmountMismatch)
	assert.Empty(t, f.publisher.types())
	f.assertExpectations(t)
}

func TestPaymentService_Approve_GatewayFailureLeavesOrderPending(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	userID := uuid.New()
	order := pendingOrder(userID)

	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("GetForUpdate", ctx, f.tx, order.ID).Return(order, nil)
	f.gateway.On("Confirm", mock.Anything, mock.Anything).
		Return(nil, model.NewPaymentError("toss", errors.New("connection reset")))
	f.tx.On("Rollback", ctx).Return(nil)

	_, err := f.service.Approve(ctx, userID, &model.PaymentApproveRequest{OrderID: order.ID, PaymentKey: "pk"})

	require.Error(t, err)
	de, ok := model.AsDomainError(err)
	require.True(t, ok)
	assert.True(t, de.Retryable())
	assert.True(t, f.tx.rolledBack)
	f.orderRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestPaymentService_Approve_MissingOrderID(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.service.Approve(context.Background(), uuid.New(), &model.PaymentApproveRequest{})

	de, ok := model.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, model.ErrCodeMissingField, de.Code)
}

func TestPaymentService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	userID := uuid.New()
	order := pendingOrder(userID)
	order.Status = model.StatusPaid
	key := "pk_1"
	order.PaymentKey = &key

	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("GetForUpdate", ctx, f.tx, order.ID).Return(order, nil)
	f.orderRepo.On("GetItemsTx", ctx, f.tx, order.ID).Return([]model.OrderItem{{ProductID: pid(4), Quantity: 2}}, nil)
	f.productRepo.On("IncrementStock", ctx, f.tx, int64(4), 2).Return(nil)
	f.orderRepo.On("MarkCancelled", ctx, f.tx, order.ID, mock.AnythingOfType("time.Time")).Return(nil)
	f.gateway.On("Cancel", mock.Anything, payment.CancelRequest{
		PaymentKey: key,
		Amount:     order.TotalAmount,
		Reason:     "changed my mind",
	}).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	cancelled, err := f.service.Cancel(ctx, userID, &model.PaymentCancelRequest{OrderID: order.ID, Reason: "changed my mind"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, []string{events.TypeOrderCancelled}, f.publisher.types())
	f.assertExpectations(t)
}

func TestPaymentService_Cancel_PendingRejected(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	userID := uuid.New()
	order := pendingOrder(userID)

	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("GetForUpdate", ctx, f.tx, order.ID).Return(order, nil)
	f.tx.On("Rollback", ctx).Return(nil)

	_, err := f.service.Cancel(ctx, userID, &model.PaymentCancelRequest{OrderID: order.ID})

	assert.ErrorIs(t, err, model.ErrOrderNotPaid)
	f.assertExpectations(t)
}

func TestPaymentService_Status(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture()
	userID := uuid.New()
	order := pendingOrder(userID)

	f.orderRepo.On("GetByID", ctx, order.ID).Return(order, nil)

	status, err := f.service.Status(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, status.Status)
	assert.Equal(t, order.OrderNumber, status.OrderNumber)

	_, err = f.service.Status(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestPaymentService_TestModeRoundTrip(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	tx := new(MockTx)
	userID := uuid.New()
	order := pendingOrder(userID)

	gateway := payment.NewTestGateway(zerolog.Nop())
	svc := NewPaymentService(
		orderRepo, new(MockUserRepository), new(MockProductRepository), gateway,
		events.NewNopPublisher(), newRecordingCache(),
		config.PaymentConfig{Timeout: time.Second}, zerolog.Nop(),
	)

	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("GetForUpdate", ctx, tx, order.ID).Return(order, nil)
	orderRepo.On("MarkPaid", ctx, tx, order.ID, "test_"+order.OrderNumber, mock.AnythingOfType("time.Time")).Return(nil)
	tx.On("Commit", ctx).Return(nil)

	result, err := svc.Approve(ctx, userID, &model.PaymentApproveRequest{OrderID: order.ID})

	require.NoError(t, err)
	assert.True(t, result.TestMode)
	assert.Equal(t, config.PaymentProviderTest, svc.Provider())
	orderRepo.AssertExpectations(t)
}
