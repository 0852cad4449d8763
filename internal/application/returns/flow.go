// Package returns orquesta devoluciones y cambios sobre una venta.
package returns

import "fmt"

// Step paso del flujo de devolución. Solo avanza en orden.
type Step string

const (
	StepInvoiceLookup         Step = "invoice_lookup"
	StepItemSelection         Step = "item_selection"
	StepCompensationSelection Step = "compensation_selection"
	StepCommitted             Step = "committed"
)

var stepOrder = []Step{StepInvoiceLookup, StepItemSelection, StepCompensationSelection, StepCommitted}

// Flow estado del flujo en el servidor.
type Flow struct {
	idx int
}

// NewFlow empieza en invoice_lookup.
func NewFlow() *Flow { return &Flow{} }

// Step paso actual.
func (f *Flow) Step() Step { return stepOrder[f.idx] }

// Advance pasa al paso to; debe ser el siguiente.
func (f *Flow) Advance(to Step) error {
	if f.idx+1 >= len(stepOrder) || stepOrder[f.idx+1] != to {
		return fmt.Errorf("transición inválida %s -> %s", f.Step(), to)
	}
	f.idx++
	return nil
}
