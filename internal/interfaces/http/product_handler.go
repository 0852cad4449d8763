package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP para Product y sus variantes (protegido).
type ProductHandler struct {
	uc   *usecase.ProductUseCase
	val  *Validator
	errs *ErrorMapper
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, val *Validator, errs *ErrorMapper) *ProductHandler {
	return &ProductHandler{uc: uc, val: val, errs: errs}
}

// Create godoc
// @Summary      Crear producto
// @Description  Sin variantes se crea una variante base (factor 1).
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.APIResponse{data=dto.ProductResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.APIResponse{data=dto.ProductResponse}
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.APIResponse{data=dto.ProductListResponse}
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	out, err := h.uc.List(c.UserContext(), limit, offset)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.APIResponse{data=dto.ProductResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, out)
}

// AddVariant godoc
// @Summary      Agregar variante (presentación) a un producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.CreateVariantRequest  true  "Variante"
// @Success      201   {object}  dto.APIResponse{data=dto.VariantResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Router       /api/products/{id}/variants [post]
func (h *ProductHandler) AddVariant(c *fiber.Ctx) error {
	var in dto.CreateVariantRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	out, err := h.uc.AddVariant(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, out)
}

// UpdateVariant godoc
// @Summary      Cambiar precio o factor de una variante
// @Description  Las ventas ya registradas conservan el precio y factor congelados.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        variantId  path  string  true  "ID de la variante"
// @Param        body       body  dto.UpdateVariantRequest  true  "Cambios"
// @Success      200        {object}  dto.APIResponse{data=dto.VariantResponse}
// @Router       /api/products/variants/{variantId} [put]
func (h *ProductHandler) UpdateVariant(c *fiber.Ctx) error {
	var in dto.UpdateVariantRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	out, err := h.uc.UpdateVariant(c.UserContext(), c.Params("variantId"), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, out)
}
