package service

import (
	"errors"
	"fmt"

	"retail-inventory-ws/internal/model"
	"retail-inventory-ws/internal/repository"
	"retail-inventory-ws/pkg/validator"

	"github.com/google/uuid"
)

var ErrSKUExists = errors.New("product with this SKU already exists")

type ProductService interface {
	CreateProduct(actor model.Actor, req *model.Product) error
	UpdateProduct(actor model.Actor, id uuid.UUID, req *model.Product) (*model.Product, error)
	DeleteProduct(actor model.Actor, id uuid.UUID) error
	GetAllProducts() ([]model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(pRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: pRepo}
}

func (s *productService) CreateProduct(actor model.Actor, req *model.Product) error {
	if !actor.Can(model.CapProducts) {
		return ErrPermissionDenied
	}

	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on rule '%s'", firstErr.Field, firstErr.Rule)
	}

	// SKU uniqueness is also a DB constraint; checking here gives the
	// caller a clean 400 instead of a driver error
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrSKUExists
	}

	req.CreatedBy = actor.Username
	req.UpdatedBy = actor.Username
	return s.productRepo.Create(req)
}

func (s *productService) UpdateProduct(actor model.Actor, id uuid.UUID, req *model.Product) (*model.Product, error) {
	if !actor.Can(model.CapProducts) {
		return nil, ErrPermissionDenied
	}

	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	existing.Name = req.Name
	existing.Category = req.Category
	existing.ReorderLevel = req.ReorderLevel
	existing.UnitCost = req.UnitCost
	existing.SellingPrice = req.SellingPrice
	existing.UpdatedBy = actor.Username

	if errs := validator.ValidateStruct(existing); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on rule '%s'", firstErr.Field, firstErr.Rule)
	}

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *productService) DeleteProduct(actor model.Actor, id uuid.UUID) error {
	if !actor.Can(model.CapDeleteProduct) {
		return ErrPermissionDenied
	}

	if _, err := s.productRepo.FindByID(id); err != nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(id)
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}
