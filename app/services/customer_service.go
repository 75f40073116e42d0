package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CustomerInput struct {
	UserID     uint
	Mobile     string
	BirthDate  *time.Time
	Membership string
}

type AddressInput struct {
	ContactType string
	Street      string
	City        string
	State       string
}

type CustomerService struct {
	customerRepo repositories.CustomerRepository
	addressRepo  repositories.AddressRepository
	userRepo     repositories.UserRepository
	db           *gorm.DB
	logger       *zap.Logger
}

func NewCustomerService(
	db *gorm.DB,
	customerRepo repositories.CustomerRepository,
	addressRepo repositories.AddressRepository,
	userRepo repositories.UserRepository,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		db:           db,
		customerRepo: customerRepo,
		addressRepo:  addressRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

func validateCustomer(in CustomerInput) map[string]string {
	fields := map[string]string{}
	if in.Membership != "" {
		if _, ok := models.MembershipLabels[in.Membership]; !ok {
			fields["membership"] = fmt.Sprintf("%q is not a valid choice.", in.Membership)
		}
	}
	if in.BirthDate != nil && in.BirthDate.After(time.Now()) {
		fields["birth_date"] = "Birth date cannot be in the future."
	}
	return fields
}

func (s *CustomerService) Me(ctx context.Context, caller Caller) (*models.Customer, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	customer, err := s.customerRepo.FindByUserID(ctx, nil, caller.UserID)
	if err != nil {
		return nil, notFound(err, "customer")
	}
	return customer, nil
}

func (s *CustomerService) UpdateMe(ctx context.Context, caller Caller, in CustomerInput) (*models.Customer, error) {
	customer, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, customer, in)
}

func (s *CustomerService) apply(ctx context.Context, customer *models.Customer, in CustomerInput) (*models.Customer, error) {
	if fields := validateCustomer(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	customer.Mobile = strings.TrimSpace(in.Mobile)
	customer.BirthDate = in.BirthDate
	if in.Membership != "" {
		customer.Membership = in.Membership
	}
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}
	return customer, nil
}

// Create attaches a profile to an existing user that does not have one yet.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	fields := validateCustomer(in)
	if _, err := s.userRepo.FindByID(ctx, in.UserID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		fields["user_id"] = fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.UserID)
	} else if _, err := s.customerRepo.FindByUserID(ctx, nil, in.UserID); err == nil {
		fields["user_id"] = "customer with this user already exists."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	customer := &models.Customer{
		UserID:     in.UserID,
		Mobile:     strings.TrimSpace(in.Mobile),
		BirthDate:  in.BirthDate,
		Membership: in.Membership,
	}
	if customer.Membership == "" {
		customer.Membership = models.MembershipSilver
	}
	if err := s.customerRepo.Create(ctx, s.db, customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("user_id", "customer with this user already exists.", err)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return s.Get(ctx, customer.ID)
}

func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, customer, in)
}

// Delete refuses customers that have placed orders.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.customerRepo.CountOrders(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count customer orders: %w", err)
	}
	if count > 0 {
		return NewValidationError("detail", "Customer cannot be deleted because they have placed orders.", nil)
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	s.logger.Info("CustomerService.Delete: customer deleted", zap.Uint("customer_id", id))
	return nil
}

func (s *CustomerService) Addresses(ctx context.Context, caller Caller) ([]models.Address, error) {
	customer, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	addresses, err := s.addressRepo.FindAddressesByCustomerID(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *CustomerService) AddAddress(ctx context.Context, caller Caller, in AddressInput) (*models.Address, error) {
	customer, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if in.ContactType != models.ContactResidential && in.ContactType != models.ContactWork {
		fields["contact_type"] = fmt.Sprintf("%q is not a valid choice.", in.ContactType)
	}
	for name, value := range map[string]string{"street": in.Street, "city": in.City, "state": in.State} {
		if strings.TrimSpace(value) == "" {
			fields[name] = "This field may not be blank."
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	address := &models.Address{
		CustomerID:  customer.ID,
		ContactType: in.ContactType,
		Street:      strings.TrimSpace(in.Street),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
	}
	if err := s.addressRepo.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}

func (s *CustomerService) DeleteAddress(ctx context.Context, caller Caller, id uint) error {
	customer, err := s.Me(ctx, caller)
	if err != nil {
		return err
	}
	if _, err := s.addressRepo.FindCustomerAddress(ctx, customer.ID, id); err != nil {
		return notFound(err, "address")
	}
	if err := s.addressRepo.DeleteAddress(ctx, id); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
