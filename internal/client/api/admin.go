package api

import (
	"context"
	"fmt"

	"github.com/atinyakov/TrueFit/internal/models"
)

// BrandInput is the writable part of a brand.
type BrandInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CompanyInput is the writable part of a company.
type CompanyInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}

// CreateAdmin registers another administrator account.
func (c *Client) CreateAdmin(ctx context.Context, data RegisterData) (Reply, error) {
	if err := CheckPasswords(data.Password, data.ConfirmPassword); err != nil {
		return Reply{}, err
	}
	if err := CheckGender(data.Gender); err != nil {
		return Reply{}, err
	}
	return do[Reply](ctx, c, epCreateAdmin, epCreateAdmin.Path, data)
}

func (c *Client) Users(ctx context.Context) ([]models.AdminUser, error) {
	return do[[]models.AdminUser](ctx, c, epUsers, epUsers.Path, nil)
}

func (c *Client) Brands(ctx context.Context) ([]models.Brand, error) {
	return do[[]models.Brand](ctx, c, epBrands, epBrands.Path, nil)
}

func (c *Client) CreateBrand(ctx context.Context, in BrandInput) (models.Brand, error) {
	if in.Name == "" {
		return models.Brand{}, &ValidationError{Field: "name", Message: "Brand name is required"}
	}
	return do[models.Brand](ctx, c, epCreateBrand, epCreateBrand.Path, in)
}

func (c *Client) UpdateBrand(ctx context.Context, id int64, in BrandInput) (models.Brand, error) {
	if in.Name == "" {
		return models.Brand{}, &ValidationError{Field: "name", Message: "Brand name is required"}
	}
	return do[models.Brand](ctx, c, epUpdateBrand, fmt.Sprintf(epUpdateBrand.Path, id), in)
}

func (c *Client) DeleteBrand(ctx context.Context, id int64) error {
	_, err := do[none](ctx, c, epDeleteBrand, fmt.Sprintf(epDeleteBrand.Path, id), nil)
	return err
}

func (c *Client) Companies(ctx context.Context) ([]models.Company, error) {
	return do[[]models.Company](ctx, c, epCompanies, epCompanies.Path, nil)
}

func (c *Client) CreateCompany(ctx context.Context, in CompanyInput) (models.Company, error) {
	if in.Name == "" {
		return models.Company{}, &ValidationError{Field: "name", Message: "Company name is required"}
	}
	return do[models.Company](ctx, c, epCreateCompany, epCreateCompany.Path, in)
}

func (c *Client) UpdateCompany(ctx context.Context, id int64, in CompanyInput) (models.Company, error) {
	if in.Name == "" {
		return models.Company{}, &ValidationError{Field: "name", Message: "Company name is required"}
	}
	return do[models.Company](ctx, c, epUpdateCompany, fmt.Sprintf(epUpdateCompany.Path, id), in)
}

func (c *Client) DeleteCompany(ctx context.Context, id int64) error {
	_, err := do[none](ctx, c, epDeleteCompany, fmt.Sprintf(epDeleteCompany.Path, id), nil)
	return err
}
