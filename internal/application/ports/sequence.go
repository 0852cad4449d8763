package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain"
)

// Prefijos de documentos numerados.
const (
	PrefixInvoice  = "INV"
	PrefixReturn   = "RET"
	PrefixPurchase = "PUR"
)

// NumberGenerator genera números de documento únicos (factura, devolución, compra).
type NumberGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// FallbackNumbers lo implementan generadores con contador que puede reiniciarse.
// Fallback devuelve un generador sin estado compartido.
type FallbackNumbers interface {
	Fallback() NumberGenerator
}

// WithDocumentNumber pide un número y corre fn con él. Si fn devuelve domain.ErrNumberTaken
// y gen tiene Fallback, repite fn una vez con un número del fallback.
// fn debe ser una transacción completa: se vuelve a ejecutar desde cero.
func WithDocumentNumber(ctx context.Context, gen NumberGenerator, prefix string, fn func(number string) error) error {
	number, err := gen.Next(ctx, prefix)
	if err != nil {
		return fmt.Errorf("número %s: %w", prefix, err)
	}
	err = fn(number)
	fb, ok := gen.(FallbackNumbers)
	if !ok || !errors.Is(err, domain.ErrNumberTaken) {
		return err
	}
	number, err = fb.Fallback().Next(ctx, prefix)
	if err != nil {
		return fmt.Errorf("número %s: %w", prefix, err)
	}
	return fn(number)
}
