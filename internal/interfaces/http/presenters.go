package http

import (
	"github.com/jhoicas/pos-api/internal/application/debts"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/returns"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func toSaleItemResponse(it entity.SaleItem) dto.SaleItemResponse {
	return dto.SaleItemResponse{
		ID:               it.ID,
		ProductID:        it.ProductID,
		VariantID:        it.VariantID,
		VariantName:      it.VariantName,
		Qty:              it.Qty,
		PriceAtSale:      it.PriceAtSale,
		UnitFactorAtSale: it.UnitFactorAtSale,
		Subtotal:         it.Subtotal,
	}
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, toSaleItemResponse(it))
	}
	return dto.SaleResponse{
		ID:               s.ID,
		InvoiceNumber:    s.InvoiceNumber,
		CustomerID:       s.CustomerID,
		Subtotal:         s.Subtotal,
		TotalPrice:       s.TotalPrice,
		TotalPaid:        s.TotalPaid,
		TotalReturn:      s.TotalReturn,
		TotalBalanceUsed: s.TotalBalanceUsed,
		OldDebtPaid:      s.OldDebtPaid,
		Status:           s.Status,
		Notes:            s.Notes,
		UserID:           s.UserID,
		CreatedAt:        s.CreatedAt,
		CancelledAt:      s.CancelledAt,
		Items:            items,
	}
}

func toSaleResultResponse(r *sales.SaleResult) dto.SaleResultResponse {
	out := dto.SaleResultResponse{
		State:  string(r.State),
		Sale:   toSaleResponse(r.Sale),
		Change: r.Change,
	}
	if r.Debt != nil {
		d := toDebtResponse(r.Debt)
		out.Debt = &d
	}
	for _, p := range r.OldDebtPayments {
		out.OldDebtPayments = append(out.OldDebtPayments, toDebtPaymentResponse(p))
	}
	return out
}

func toDebtResponse(d *entity.Debt) dto.DebtResponse {
	return dto.DebtResponse{
		ID:              d.ID,
		SaleID:          d.SaleID,
		CustomerID:      d.CustomerID,
		OriginalAmount:  d.OriginalAmount,
		RemainingAmount: d.RemainingAmount,
		Status:          d.Status,
		IsActive:        d.IsActive,
		CreatedAt:       d.CreatedAt,
		PaidAt:          d.PaidAt,
	}
}

func toDebtPaymentResponse(p *entity.DebtPayment) dto.DebtPaymentResponse {
	return dto.DebtPaymentResponse{
		ID:        p.ID,
		DebtID:    p.DebtID,
		SaleID:    p.SaleID,
		Amount:    p.Amount,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
	}
}

func toPaymentResultResponse(r *debts.PaymentResult) dto.PaymentResultResponse {
	return dto.PaymentResultResponse{Debt: toDebtResponse(r.Debt), Payment: toDebtPaymentResponse(r.Payment)}
}

func toCustomerDebtsResponse(s *debts.CustomerSummary) dto.CustomerDebtsResponse {
	list := make([]dto.DebtResponse, 0, len(s.Debts))
	for _, d := range s.Debts {
		list = append(list, toDebtResponse(d))
	}
	return dto.CustomerDebtsResponse{
		Customer:  *usecase.ToCustomerResponse(s.Customer),
		TotalDebt: s.TotalDebt,
		Debts:     list,
	}
}

func toReturnableSaleResponse(r *returns.ReturnableSale) dto.ReturnableSaleResponse {
	items := make([]dto.ReturnableItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.ReturnableItemResponse{
			SaleItemResponse: toSaleItemResponse(it.SaleItem),
			ReturnedQty:      it.ReturnedQty,
			MaxReturnable:    it.MaxReturnable,
		})
	}
	out := dto.ReturnableSaleResponse{Sale: toSaleResponse(r.Sale), Items: items, Blocked: r.Blocked}
	if r.Debt != nil {
		d := toDebtResponse(r.Debt)
		out.Debt = &d
	}
	return out
}

func toReturnResponse(r *entity.CustomerReturn) dto.ReturnResponse {
	items := make([]dto.ReturnItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.ReturnItemResponse{
			ID:                 it.ID,
			SaleItemID:         it.SaleItemID,
			ProductID:          it.ProductID,
			VariantID:          it.VariantID,
			Qty:                it.Qty,
			PriceAtReturn:      it.PriceAtReturn,
			UnitFactorAtReturn: it.UnitFactorAtReturn,
			ReturnedToStock:    it.ReturnedToStock,
			Subtotal:           it.Subtotal,
		})
	}
	var exchange []dto.ExchangeItemResponse
	for _, it := range r.ExchangeItems {
		exchange = append(exchange, dto.ExchangeItemResponse{
			ID:                   it.ID,
			ProductID:            it.ProductID,
			VariantID:            it.VariantID,
			Qty:                  it.Qty,
			PriceAtExchange:      it.PriceAtExchange,
			UnitFactorAtExchange: it.UnitFactorAtExchange,
			Subtotal:             it.Subtotal,
		})
	}
	return dto.ReturnResponse{
		ID:                 r.ID,
		ReturnNumber:       r.ReturnNumber,
		SaleID:             r.SaleID,
		CustomerID:         r.CustomerID,
		TotalValueReturned: r.TotalValueReturned,
		TotalValueExchange: r.TotalValueExchange,
		TotalRefund:        r.TotalRefund,
		CreditAdded:        r.CreditAdded,
		CompensationType:   r.CompensationType,
		SurplusDisposition: r.SurplusDisposition,
		Status:             r.Status,
		Reason:             r.Reason,
		UserID:             r.UserID,
		CreatedAt:          r.CreatedAt,
		CancelledAt:        r.CancelledAt,
		Items:              items,
		ExchangeItems:      exchange,
	}
}

func toReturnResultResponse(r *returns.ReturnResult) dto.ReturnResultResponse {
	return dto.ReturnResultResponse{Step: string(r.Step), SaleStatus: r.SaleStatus, Return: toReturnResponse(r.Return)}
}

func toPurchaseResponse(p *entity.Purchase) dto.PurchaseResponse {
	var items []dto.PurchaseItemResponse
	for _, it := range p.Items {
		items = append(items, dto.PurchaseItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			Qty:        it.Qty,
			UnitCost:   it.UnitCost,
			UnitFactor: it.UnitFactor,
			Subtotal:   it.Subtotal,
		})
	}
	return dto.PurchaseResponse{
		ID:           p.ID,
		Reference:    p.Reference,
		SupplierName: p.SupplierName,
		Total:        p.Total,
		Status:       p.Status,
		Notes:        p.Notes,
		UserID:       p.UserID,
		CreatedAt:    p.CreatedAt,
		CancelledAt:  p.CancelledAt,
		Items:        items,
	}
}

func toStockMutationDTO(m *entity.StockMutation) dto.StockMutationDTO {
	return dto.StockMutationDTO{
		ID:          m.ID,
		ProductID:   m.ProductID,
		VariantID:   m.VariantID,
		Type:        string(m.Type),
		QtyBaseUnit: m.QtyBaseUnit,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		UnitCost:    m.UnitCost,
		Reference:   m.Reference,
		Notes:       m.Notes,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
	}
}
