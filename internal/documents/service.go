package documents

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gemdesk/gemdesk/internal/catalog"
	"github.com/gemdesk/gemdesk/internal/partners"
	"github.com/gemdesk/gemdesk/internal/products"
	"github.com/gemdesk/gemdesk/report"
)

// GenerateRequest asks for one delivery act.
type GenerateRequest struct {
	Type             string  `json:"type" validate:"required,oneof=INITIAL FINAL"`
	PartnerID        int64   `json:"partnerId" validate:"required,gt=0"`
	ProductID        int64   `json:"productId" validate:"required,gt=0"`
	ActNumber        string  `json:"actNumber,omitempty" validate:"max=50"`
	SettlementAmount float64 `json:"settlementAmount,omitempty" validate:"gte=0"`
	OperatorName     string  `json:"operatorName,omitempty" validate:"max=200"`
}

// Service assembles act data from the upstream records and converts the
// rendered HTML to PDF.
type Service struct {
	logger     *slog.Logger
	partners   *partners.Service
	products   *products.Service
	categories *catalog.Service[catalog.Category]
	renderer   *Renderer
	pdf        *report.Client
	validate   *validator.Validate
	now        func() time.Time
}

// NewService constructs the document service.
func NewService(logger *slog.Logger, partnerSvc *partners.Service, productSvc *products.Service, categorySvc *catalog.Service[catalog.Category], renderer *Renderer, pdf *report.Client, validate *validator.Validate) *Service {
	return &Service{
		logger:     logger,
		partners:   partnerSvc,
		products:   productSvc,
		categories: categorySvc,
		renderer:   renderer,
		pdf:        pdf,
		validate:   validate,
		now:        time.Now,
	}
}

// GenerateAct fetches the act inputs, renders the HTML and converts it to
// PDF. A record that cannot be fetched leaves its fields blank on the act;
// the paperwork is completed by hand in that case.
func (s *Service) GenerateAct(ctx context.Context, req GenerateRequest) ([]byte, string, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, "", err
	}

	data := s.collect(ctx, req)
	html, err := s.renderer.Render(req.Type, data)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.pdf.RenderHTML(ctx, html)
	if err != nil {
		return nil, "", fmt.Errorf("documents: convert act: %w", err)
	}
	return pdf, s.fileName(req), nil
}

func (s *Service) collect(ctx context.Context, req GenerateRequest) ActData {
	data := ActData{
		ActNumber:    req.ActNumber,
		Date:         s.now().Format("02.01.2006"),
		OperatorName: req.OperatorName,
	}
	if req.SettlementAmount > 0 {
		data.SettlementAmount = formatMoney(req.SettlementAmount)
	}

	partner, err := s.partners.Get(ctx, req.PartnerID)
	if err != nil {
		s.logger.Warn("act partner fetch failed", "partner_id", req.PartnerID, "error", err)
	} else {
		data.PartnerName = partner.DisplayName()
		data.PartnerFIN = partner.FIN
		data.PartnerAddress = partner.Address
	}

	product, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		s.logger.Warn("act product fetch failed", "product_id", req.ProductID, "error", err)
		return data
	}
	data.ProductName = product.Name
	data.ProductSKU = product.SKU
	data.Description = product.Description
	if product.Weight > 0 {
		data.ProductWeight = strconv.FormatFloat(product.Weight, 'f', 2, 64) + " g"
	}
	if product.RentPrice > 0 {
		data.RentPrice = formatMoney(product.RentPrice)
	}
	if product.SalePrice > 0 {
		data.SalePrice = formatMoney(product.SalePrice)
	}

	if product.CategoryID > 0 {
		category, err := s.categories.Get(ctx, product.CategoryID)
		if err != nil {
			s.logger.Warn("act category fetch failed", "category_id", product.CategoryID, "error", err)
		} else {
			data.CategoryName = category.Name
		}
	}
	return data
}

// Ping reports whether the PDF converter is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.pdf.Ping(ctx)
}

func (s *Service) fileName(req GenerateRequest) string {
	kind := "initial-act"
	if req.Type == ActFinal {
		kind = "final-act"
	}
	return fmt.Sprintf("%s-partner-%d-product-%d.pdf", kind, req.PartnerID, req.ProductID)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
