// Package scheduler corre tareas periódicas del POS (monitor de stock bajo).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/jhoicas/pos-api/pkg/logger"
)

// LowStockChecker lo implementa inventory.ReplenishmentUseCase.
type LowStockChecker interface {
	CheckLowStock(ctx context.Context) (int, error)
}

// Scheduler envuelve gocron con timeout por ejecución.
type Scheduler struct {
	cron    *gocron.Scheduler
	log     *logger.Logger
	timeout time.Duration
}

// New crea el scheduler en la zona horaria dada ("" = UTC).
func New(timezone string, log *logger.Logger) (*Scheduler, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
		}
		loc = l
	}
	cron := gocron.NewScheduler(loc)
	cron.SingletonModeAll()
	return &Scheduler{cron: cron, log: log, timeout: 30 * time.Second}, nil
}

// EveryLowStock programa el monitor cada intervalo. Intervalo <= 0 no programa nada.
func (s *Scheduler) EveryLowStock(interval time.Duration, checker LowStockChecker) error {
	if interval <= 0 {
		s.log.Info().Msg("monitor de stock bajo desactivado")
		return nil
	}
	_, err := s.cron.Every(interval).Tag("low_stock").Do(func() {
		s.runLowStock(checker)
	})
	if err != nil {
		return fmt.Errorf("schedule low stock: %w", err)
	}
	return nil
}

func (s *Scheduler) runLowStock(checker LowStockChecker) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := checker.CheckLowStock(ctx)
	if err != nil {
		return
	}
	s.log.Info().Int("products", n).Msg("monitor de stock bajo ejecutado")
}

// Start arranca en segundo plano.
func (s *Scheduler) Start() { s.cron.StartAsync() }

// Stop detiene el scheduler y espera la tarea en curso.
func (s *Scheduler) Stop() { s.cron.Stop() }

// Jobs cantidad de tareas programadas.
func (s *Scheduler) Jobs() int { return s.cron.Len() }
