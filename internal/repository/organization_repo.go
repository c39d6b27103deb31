package repository

import (
	"sentra/internal/models"

	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(o *models.Organization) error {
	return r.db.Create(o).Error
}

func (r *OrganizationRepository) GetByID(id uint) (*models.Organization, error) {
	var o models.Organization
	err := r.db.First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepository) GetByName(name string) (*models.Organization, error) {
	var o models.Organization
	err := r.db.Where("name = ?", name).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}
