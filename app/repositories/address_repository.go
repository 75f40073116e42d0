package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type AddressRepository interface {
	CreateAddress(ctx context.Context, address *models.Address) error
	FindAddressesByCustomerID(ctx context.Context, customerID uint) ([]models.Address, error)
	FindCustomerAddress(ctx context.Context, customerID, id uint) (*models.Address, error)
	DeleteAddress(ctx context.Context, id uint) error
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *addressRepository) FindAddressesByCustomerID(ctx context.Context, customerID uint) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("id ASC").Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *addressRepository) FindCustomerAddress(ctx context.Context, customerID, id uint) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).Where("customer_id = ? AND id = ?", customerID, id).First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) DeleteAddress(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Address{}, "id = ?", id).Error
}
