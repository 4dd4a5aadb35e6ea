// Package memory implementa los repositorios en memoria para desarrollo y tests,
// con el mismo contrato transaccional que Postgres: una transacción trabaja sobre
// una copia y solo se publica si fn retorna nil y el contexto sigue vivo.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

type stockKey struct {
	productID string
	branchID  string
}

type data struct {
	products  map[string]entity.Product
	stocks    map[stockKey]entity.StockLevel
	movements []entity.StockMovement
	sales     map[string]entity.Sale
	lines     map[string][]entity.SaleLine
}

func newData() *data {
	return &data{
		products: make(map[string]entity.Product),
		stocks:   make(map[stockKey]entity.StockLevel),
		sales:    make(map[string]entity.Sale),
		lines:    make(map[string][]entity.SaleLine),
	}
}

func (d *data) clone() *data {
	c := &data{
		products:  make(map[string]entity.Product, len(d.products)),
		stocks:    make(map[stockKey]entity.StockLevel, len(d.stocks)),
		movements: make([]entity.StockMovement, len(d.movements)),
		sales:     make(map[string]entity.Sale, len(d.sales)),
		lines:     make(map[string][]entity.SaleLine, len(d.lines)),
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.stocks {
		c.stocks[k] = v
	}
	copy(c.movements, d.movements)
	for k, v := range d.sales {
		c.sales[k] = v
	}
	for k, v := range d.lines {
		c.lines[k] = append([]entity.SaleLine(nil), v...)
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan completas: más estricto
// que el bloqueo por fila de Postgres pero con el mismo resultado observable.
type Store struct {
	mu sync.Mutex
	d  *data
}

// New crea un Store vacío.
func New() *Store {
	return &Store{d: newData()}
}

var _ inventory.TxRunner = (*Store)(nil)

// Run ejecuta fn sobre una copia de trabajo. Commit solo si fn retorna nil y ctx no fue cancelado.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Storage("begin transaction", err)
	}
	work := s.d.clone()
	if err := fn(reposFor(func(f func(*data) error) error { return f(work) })); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Storage("commit transaction", err)
	}
	s.d = work
	return nil
}

// Repos repositorios fuera de transacción (autocommit), equivalentes a los atados al pool.
// No deben usarse desde dentro de Run.
func (s *Store) Repos() inventory.Repos {
	return reposFor(func(f func(*data) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return f(s.d)
	})
}

// access da acceso al estado: el de la transacción o el publicado bajo el mutex.
type access func(f func(*data) error) error

func reposFor(with access) inventory.Repos {
	return inventory.Repos{
		Stock:     &stockRepo{with: with},
		Movements: &movementRepo{with: with},
		Sales:     &saleRepo{with: with},
		Products:  &productRepo{with: with},
	}
}
