package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"
)

type MidtransNotificationPayload struct {
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	StatusCode        string `json:"status_code"`
}

// PaymentGateway is the part of Midtrans the payment service talks to.
type PaymentGateway interface {
	CreateTransaction(req *snap.Request) (*snap.Response, error)
	CheckTransaction(orderCode string) (*coreapi.TransactionStatusResponse, error)
}

type midtransGateway struct {
	snapClient snap.Client
	coreClient coreapi.Client
}

func NewMidtransGateway(cfg configs.MidtransConfig) PaymentGateway {
	return &midtransGateway{
		snapClient: configs.NewMidtransSnapClient(cfg),
		coreClient: configs.NewMidtransCoreAPIClient(cfg),
	}
}

func (g *midtransGateway) CreateTransaction(req *snap.Request) (*snap.Response, error) {
	resp, midtransErr := g.snapClient.CreateTransaction(req)
	if midtransErr != nil {
		return nil, midtransError(midtransErr)
	}
	return resp, nil
}

func (g *midtransGateway) CheckTransaction(orderCode string) (*coreapi.TransactionStatusResponse, error) {
	resp, midtransErr := g.coreClient.CheckTransaction(orderCode)
	if midtransErr != nil {
		return nil, midtransError(midtransErr)
	}
	return resp, nil
}

func midtransError(e *midtrans.Error) error {
	if e.RawError != nil {
		return fmt.Errorf("midtrans: %s: %w", e.Message, e.RawError)
	}
	return fmt.Errorf("midtrans: %s (status %d)", e.Message, e.StatusCode)
}

type PaymentResult struct {
	Token       string
	RedirectURL string
}

type PaymentService struct {
	orderRepo    repositories.OrderRepository
	customerRepo repositories.CustomerRepository
	gateway      PaymentGateway
	appURL       string
	logger       *zap.Logger
}

func NewPaymentService(
	orderRepo repositories.OrderRepository,
	customerRepo repositories.CustomerRepository,
	gateway PaymentGateway,
	appURL string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		gateway:      gateway,
		appURL:       appURL,
		logger:       logger,
	}
}

// InitiatePayment creates a Snap transaction for one of the caller's pending orders.
func (s *PaymentService) InitiatePayment(ctx context.Context, caller Caller, orderID uint) (*PaymentResult, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	customer, err := s.customerRepo.FindByUserID(ctx, nil, caller.UserID)
	if err != nil {
		return nil, notFound(err, "customer")
	}
	order, err := s.orderRepo.GetByIDForCustomer(ctx, orderID, customer.ID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if order.PaymentStatus != models.StatusPending {
		return nil, NewValidationError("payment_status", fmt.Sprintf("Order payment is already %s.", order.PaymentStatus), nil)
	}

	resp, err := s.gateway.CreateTransaction(BuildSnapRequest(order, s.appURL))
	if err != nil {
		s.logger.Error("PaymentService.InitiatePayment: failed to create transaction", zap.String("code", order.Code), zap.Error(err))
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}

	if err := s.orderRepo.UpdateMidtransDetails(ctx, order.ID, resp.Token, resp.RedirectURL); err != nil {
		return nil, fmt.Errorf("failed to store payment token: %w", err)
	}
	return &PaymentResult{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// BuildSnapRequest prices every item in whole rupiah so the gross amount always equals the sum
// of the item lines.
func BuildSnapRequest(order *models.Order, appURL string) *snap.Request {
	items := make([]midtrans.ItemDetails, 0, len(order.Items))
	var gross int64
	for _, item := range order.Items {
		price := item.Price.Round(0).IntPart()
		gross += price * int64(item.Quantity)
		items = append(items, midtrans.ItemDetails{
			ID:    strconv.FormatUint(uint64(item.ProductID), 10),
			Name:  truncate(item.Product.Title, 50),
			Price: price,
			Qty:   int32(item.Quantity),
		})
	}

	user := order.Customer.User
	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.Code,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FirstName,
			LName: user.LastName,
			Email: user.Email,
			Phone: order.Customer.Mobile,
		},
		Items: &items,
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/orders/%d", appURL, order.ID),
		},
		EnabledPayments: snap.AllSnapPaymentType,
		CustomField1:    strconv.FormatUint(uint64(order.ID), 10),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// PaymentStatusFromMidtrans maps a verified Midtrans transaction onto an order payment status.
// ok is false for statuses that do not change anything.
func PaymentStatusFromMidtrans(transactionStatus, fraudStatus string) (status string, ok bool) {
	switch transactionStatus {
	case "capture", "settlement":
		if fraudStatus == "" || fraudStatus == "accept" {
			return models.StatusCompleted, true
		}
		return models.StatusFailed, true
	case "deny", "cancel", "expire", "failure":
		return models.StatusFailed, true
	case "pending":
		return models.StatusPending, true
	}
	return "", false
}

// HandleNotification re-checks the transaction with Midtrans instead of trusting the payload,
// then moves a pending order to its final payment status.
func (s *PaymentService) HandleNotification(ctx context.Context, payload MidtransNotificationPayload) (*models.Order, error) {
	if payload.OrderID == "" {
		return nil, NewValidationError("order_id", "This field is required.", nil)
	}

	status, err := s.gateway.CheckTransaction(payload.OrderID)
	if err != nil {
		s.logger.Error("PaymentService.HandleNotification: failed to verify transaction", zap.String("code", payload.OrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to verify transaction: %w", err)
	}
	if status == nil {
		return nil, errors.New("invalid transaction status from Midtrans (nil response)")
	}
	if status.StatusCode == "404" {
		return nil, fmt.Errorf("transaction %s: %w", payload.OrderID, ErrNotFound)
	}
	if status.TransactionStatus != payload.TransactionStatus || status.FraudStatus != payload.FraudStatus {
		s.logger.Warn("PaymentService.HandleNotification: payload differs from verified status",
			zap.String("code", payload.OrderID),
			zap.String("verified", status.TransactionStatus+"/"+status.FraudStatus),
			zap.String("notified", payload.TransactionStatus+"/"+payload.FraudStatus))
	}

	order, err := s.orderRepo.FindByCode(ctx, payload.OrderID)
	if err != nil {
		return nil, notFound(err, "order")
	}

	if order.PaymentStatus != models.StatusPending {
		s.logger.Info("PaymentService.HandleNotification: order already final, skipping",
			zap.String("code", order.Code), zap.String("payment_status", order.PaymentStatus))
		return order, nil
	}

	newStatus, ok := PaymentStatusFromMidtrans(status.TransactionStatus, status.FraudStatus)
	if !ok {
		s.logger.Warn("PaymentService.HandleNotification: unhandled transaction status",
			zap.String("code", order.Code), zap.String("status", status.TransactionStatus))
		return order, nil
	}
	if newStatus == models.StatusPending {
		return order, nil
	}

	if _, err := s.orderRepo.UpdatePaymentStatusIfPending(ctx, order.ID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	s.logger.Info("PaymentService.HandleNotification: payment status updated",
		zap.String("code", order.Code), zap.String("payment_status", newStatus))
	return s.orderRepo.FindByCode(ctx, payload.OrderID)
}
