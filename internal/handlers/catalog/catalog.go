package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/dto"
	"github.com/GlebRadaev/campusmart/internal/service/catalogservice"
	"github.com/GlebRadaev/campusmart/pkg/utils"
	"github.com/GlebRadaev/campusmart/pkg/validate"
)

//go:generate mockgen -source=catalog.go -destination=mock_catalog.go -package=catalog

type Service interface {
	Featured(ctx context.Context, limit int) ([]domain.Product, error)
	TopExpensive(ctx context.Context, k int) ([]domain.Product, error)
	Product(ctx context.Context, id int) (*domain.Product, error)
}

type CatalogHandler struct {
	catalogService Service
}

func New(catalogService Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GetFeatured godoc
//
//	@Summary		Featured products
//	@Description	Available priced products that at least one seller has in stock.
//	@Tags			Catalog
//	@Produce		json
//	@Param			limit	query	int	false	"Number of products (default 20, max 100)"
//	@Success		200		{array}		dto.ProductDTO
//	@Failure		400		{object}	utils.Response	"Invalid limit"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/products/featured [get]
func (h *CatalogHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.QueryInt(r, "limit", 0)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.catalogService.Featured(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, productList(products))
}

// GetTopExpensive godoc
//
//	@Summary	Most expensive products
//	@Tags		Catalog
//	@Produce	json
//	@Param		k	query		int	false	"Number of products (default 5, max 100)"
//	@Success	200	{array}		dto.ProductDTO
//	@Failure	400	{object}	utils.Response	"Invalid k"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/products/topk [get]
func (h *CatalogHandler) GetTopExpensive(w http.ResponseWriter, r *http.Request) {
	k, err := validate.QueryInt(r, "k", 0)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.catalogService.TopExpensive(r.Context(), k)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, productList(products))
}

// GetProduct godoc
//
//	@Summary	Get a product
//	@Tags		Catalog
//	@Produce	json
//	@Param		productID	path		int	true	"Product ID"
//	@Success	200			{object}	dto.ProductDTO
//	@Failure	400			{object}	utils.Response	"Invalid product id"
//	@Failure	404			{object}	utils.Response	"Product not found"
//	@Router		/api/products/{productID} [get]
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil || productID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := h.catalogService.Product(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalogservice.ErrProductNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, productDTO(product))
}

func productList(products []domain.Product) []dto.ProductDTO {
	resp := make([]dto.ProductDTO, len(products))
	for i := range products {
		resp[i] = productDTO(&products[i])
	}
	return resp
}

func productDTO(p *domain.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       dto.Price(p.Price),
		Available:   p.Available,
	}
}
