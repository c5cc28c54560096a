package controllers

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/middlewares"
	"github.com/utkarsh-pawar/farmers-manipal/models"
	"github.com/utkarsh-pawar/farmers-manipal/responses"
	"github.com/utkarsh-pawar/farmers-manipal/stores"
)

type ProductController struct {
	products *stores.ProductStore
}

func NewProductController(products *stores.ProductStore) *ProductController {
	return &ProductController{products: products}
}

func pagination(c *fiber.Ctx, defaultLimit int64) (int64, int64) {
	page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.Query("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// GetProducts is the public catalog listing: only available, unblocked
// products, with optional search and category filter.
func (pc *ProductController) GetProducts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	page, limit := pagination(c, 12)
	filter := stores.ProductFilter{
		Search:      c.Query("search"),
		Category:    c.Query("category"),
		VisibleOnly: true,
	}

	products, total, err := pc.products.Search(ctx, filter, page, limit)
	if err != nil {
		return responses.Error(c, err)
	}

	totalPages := (total + limit - 1) / limit
	return responses.OK(c, "Fetched products", &fiber.Map{
		"products":    products,
		"currentPage": page,
		"totalPages":  totalPages,
		"total":       total,
	})
}

// GetProduct returns one product. Hidden or blocked products look absent to
// the public.
func (pc *ProductController) GetProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid product ID format"))
	}

	product, err := pc.products.FindByID(ctx, id)
	if err != nil {
		return responses.Error(c, err)
	}
	if !product.Purchasable() {
		return responses.Error(c, apperrors.ErrNotFound)
	}

	return responses.OK(c, "Fetched product", &fiber.Map{
		"product": product,
	})
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       *float64        `json:"price"`
	Quantity    *int            `json:"quantity"`
	Category    models.Category `json:"category"`
	Unit        models.Unit     `json:"unit"`
	Image       string          `json:"image"`
	IsAvailable *bool           `json:"isAvailable"`
}

// AddProduct creates a product owned by the calling farmer.
func (pc *ProductController) AddProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return responses.Error(c, apperrors.Validation("body", "Invalid request format"))
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if utf8.RuneCountInString(req.Name) < 2 {
		return responses.Error(c, apperrors.Validation("name", "Name must be at least 2 characters"))
	}
	if req.Description == "" {
		return responses.Error(c, apperrors.Validation("description", "Description is required"))
	}
	if req.Price == nil || *req.Price < 0 {
		return responses.Error(c, apperrors.Validation("price", "Price must be a positive number"))
	}
	if req.Quantity == nil || *req.Quantity < 1 {
		return responses.Error(c, apperrors.Validation("quantity", "Quantity must be at least 1"))
	}
	if !req.Category.Valid() {
		return responses.Error(c, apperrors.Validation("category", "Invalid category"))
	}
	if !req.Unit.Valid() {
		return responses.Error(c, apperrors.Validation("unit", "Invalid unit"))
	}
	if req.Image == "" {
		return responses.Error(c, apperrors.Validation("image", "Image is required"))
	}

	farmer := middlewares.CurrentUser(c)
	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		Category:    req.Category,
		Unit:        req.Unit,
		Image:       req.Image,
		Farmer:      farmer.Id,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := pc.products.Create(ctx, product); err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "Product added successfully", &fiber.Map{
		"product": product,
	})
}

// UpdateProduct lets a farmer edit their own product. The farmer reference
// itself is never editable.
func (pc *ProductController) UpdateProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid product ID format"))
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return responses.Error(c, apperrors.Validation("body", "Invalid request format"))
	}

	product, err := pc.products.FindByID(ctx, id)
	if err != nil {
		return responses.Error(c, err)
	}

	farmer := middlewares.CurrentUser(c)
	if product.Farmer != farmer.Id {
		return responses.Error(c, apperrors.ErrForbidden)
	}

	set := bson.M{}
	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if utf8.RuneCountInString(name) < 2 {
			return responses.Error(c, apperrors.Validation("name", "Name must be at least 2 characters"))
		}
		set["name"] = name
	}
	if req.Description != "" {
		set["description"] = strings.TrimSpace(req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return responses.Error(c, apperrors.Validation("price", "Price must be a positive number"))
		}
		set["price"] = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return responses.Error(c, apperrors.Validation("quantity", "Quantity cannot be negative"))
		}
		set["quantity"] = *req.Quantity
	}
	if req.Category != "" {
		if !req.Category.Valid() {
			return responses.Error(c, apperrors.Validation("category", "Invalid category"))
		}
		set["category"] = req.Category
	}
	if req.Unit != "" {
		if !req.Unit.Valid() {
			return responses.Error(c, apperrors.Validation("unit", "Invalid unit"))
		}
		set["unit"] = req.Unit
	}
	if req.Image != "" {
		set["image"] = req.Image
	}
	if req.IsAvailable != nil {
		set["isAvailable"] = *req.IsAvailable
	}

	if len(set) == 0 {
		return responses.Error(c, apperrors.Validation("body", "Nothing to update"))
	}

	updated, err := pc.products.Update(ctx, id, set)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Product updated successfully", &fiber.Map{
		"product": updated,
	})
}

// DeleteProduct lets a farmer remove their own product.
func (pc *ProductController) DeleteProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid product ID format"))
	}

	product, err := pc.products.FindByID(ctx, id)
	if err != nil {
		return responses.Error(c, err)
	}

	farmer := middlewares.CurrentUser(c)
	if product.Farmer != farmer.Id {
		return responses.Error(c, apperrors.ErrForbidden)
	}

	if err := pc.products.Delete(ctx, id); err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Product deleted successfully", nil)
}

// MyProducts lists everything the calling farmer owns, blocked or not.
func (pc *ProductController) MyProducts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	farmer := middlewares.CurrentUser(c)
	products, err := pc.products.FindByFarmer(ctx, farmer.Id)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Fetched products", &fiber.Map{
		"products": products,
	})
}
