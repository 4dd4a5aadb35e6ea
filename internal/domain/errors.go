package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los errores tipados de abajo se comparan contra estos centinelas con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrStorage           = errors.New("error de almacenamiento")
)

// ValidationError entrada mal formada; se rechaza antes de abrir transacción.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "entrada inválida: " + e.Reason
	}
	return fmt.Sprintf("entrada inválida: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidation atajo para construir un ValidationError.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ProductNotFoundError un ítem de la venta referencia un producto inexistente.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool { return target == ErrNotFound }

// StockNotFoundError no existe fila de stock para el par producto×sucursal.
type StockNotFoundError struct {
	ProductID string
	BranchID  string
}

func (e *StockNotFoundError) Error() string {
	return fmt.Sprintf("stock no encontrado para producto %s en sucursal %s", e.ProductID, e.BranchID)
}

func (e *StockNotFoundError) Is(target error) bool { return target == ErrNotFound }

// SaleNotFoundError la venta solicitada no existe.
type SaleNotFoundError struct {
	SaleID string
}

func (e *SaleNotFoundError) Error() string {
	return fmt.Sprintf("venta %s no encontrada", e.SaleID)
}

func (e *SaleNotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError una salida pide más de lo disponible.
type InsufficientStockError struct {
	ProductID string
	BranchID  string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en sucursal %s: disponible %d, solicitado %d",
		e.ProductID, e.BranchID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// AlreadyVoidError la venta ya fue anulada; anular dos veces es un error, no un no-op.
type AlreadyVoidError struct {
	SaleID string
}

func (e *AlreadyVoidError) Error() string {
	return fmt.Sprintf("la venta %s ya está anulada", e.SaleID)
}

func (e *AlreadyVoidError) Is(target error) bool { return target == ErrConflict }

// StorageError fallo de la infraestructura de transacciones/bloqueos.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage envuelve err como StorageError; nil si err es nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsClientError indica que la petición es inválida o entra en conflicto con el estado:
// reintentarla tal cual fallará igual.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthorized)
}

// IsRetryable indica un fallo transitorio de infraestructura que el caller puede reintentar.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorage) && !IsClientError(err)
}
