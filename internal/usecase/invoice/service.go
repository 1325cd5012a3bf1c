package invoice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// Service issues invoices from completed orders, exactly one per order
type Service struct {
	repo        domain.InvoiceRepository
	orderRepo   domain.OrderRepository
	taxRate     float64
	shippingFee float64
	logger      *logger.Logger
}

// NewService creates a new invoice service. Tax rate and shipping fee come
// from billing configuration and default to zero.
func NewService(
	repo domain.InvoiceRepository,
	orderRepo domain.OrderRepository,
	taxRate float64,
	shippingFee float64,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		orderRepo:   orderRepo,
		taxRate:     taxRate,
		shippingFee: shippingFee,
		logger:      log,
	}
}

// Issue returns the invoice for an order, creating it only if none exists.
// The explicit existence check is the fast path; the unique constraint on
// order_id is the backstop, and losing that race also resolves to "return
// the existing invoice". The second return value reports whether a new
// invoice was created by this call.
func (s *Service) Issue(ctx context.Context, identity domain.Identity, orderID string) (*domain.Invoice, bool, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" || !strings.HasPrefix(orderID, "ORD-") {
		return nil, false, fmt.Errorf("malformed order id %q: %w", orderID, domain.ErrInvalidInput)
	}

	order, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get order for invoicing", err)
		}
		return nil, false, err
	}

	if order.UserID != identity.UserID && !identity.IsAdmin() {
		return nil, false, domain.ErrForbidden
	}

	existing, err := s.repo.GetByOrderID(ctx, orderID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error("Failed to check for existing invoice", err)
		return nil, false, err
	}

	inv := s.build(order)
	if err := s.repo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// lost the race; the winner's invoice is the invoice
			existing, err := s.repo.GetByOrderID(ctx, orderID)
			if err != nil {
				s.logger.Error("Failed to fetch invoice after duplicate insert", err)
				return nil, false, err
			}
			return existing, false, nil
		}
		s.logger.Error("Failed to create invoice", err)
		return nil, false, err
	}

	s.logger.WithFields(map[string]interface{}{
		"invoice_number": inv.InvoiceNumber,
		"order_id":       orderID,
		"total_amount":   inv.TotalAmount,
		"payment_status": inv.PaymentStatus,
	}).Info("Invoice issued")

	return inv, true, nil
}

// build derives the billing document from the order's frozen snapshots
func (s *Service) build(order *domain.Order) *domain.Invoice {
	items := make(domain.InvoiceItems, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.InvoiceItem{
			ProductID:  item.ProductID,
			VariantSKU: item.VariantSKU,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
		})
	}

	subtotal := order.TotalAmount
	tax := round2(subtotal * s.taxRate)

	return &domain.Invoice{
		OrderID:        order.OrderID,
		UserID:         order.UserID,
		BillingAddress: order.DeliveryAddress,
		Items:          items,
		Subtotal:       subtotal,
		Tax:            tax,
		ShippingFee:    s.shippingFee,
		TotalAmount:    subtotal + tax + s.shippingFee,
		PaymentMethod:  order.PaymentMethod,
		PaymentStatus:  domain.DerivePaymentStatus(order.PaymentMethod),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
