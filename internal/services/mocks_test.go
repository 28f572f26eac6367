package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"

	"github.com/adstudio/backend/internal/models"
	"github.com/adstudio/backend/internal/payments"
)

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) Provision(ctx context.Context, entry models.CreditEntry) (*models.CreditReceipt, bool, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.CreditReceipt), args.Bool(1), args.Error(2)
}

func (m *MockLedgerStore) Grant(ctx context.Context, entry models.CreditEntry) (*models.CreditReceipt, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditReceipt), args.Error(1)
}

func (m *MockLedgerStore) Debit(ctx context.Context, userID string, amount int64, description string) (*models.CreditReceipt, bool, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.CreditReceipt), args.Bool(1), args.Error(2)
}

func (m *MockLedgerStore) Balance(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerStore) History(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CreditTransaction), args.Error(1)
}

func (m *MockLedgerStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event any) error {
	return m.Called(ctx, key, event).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) GenerateProductImage(ctx context.Context, description string) (string, error) {
	args := m.Called(ctx, description)
	return args.String(0), args.Error(1)
}

func (m *MockImageGenerator) EditProductImage(ctx context.Context, imageURL, prompt string) (string, error) {
	args := m.Called(ctx, imageURL, prompt)
	return args.String(0), args.Error(1)
}

type MockCheckoutProvider struct {
	mock.Mock
}

func (m *MockCheckoutProvider) CreateCreditCheckout(ctx context.Context, params payments.CreditCheckoutParams) (*payments.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.CheckoutSession), args.Error(1)
}

func (m *MockCheckoutProvider) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Event), args.Error(1)
}

type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) EnsureProvisioned(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
