package billing

import (
	"fmt"
	"time"
)

// Pagos simulados: no hay pasarela real, el cobro se registra en caja.

type Method string

const (
	MethodEfectivo      Method = "EFECTIVO"
	MethodTarjeta       Method = "TARJETA"
	MethodTransferencia Method = "TRANSFERENCIA"
)

func (m Method) Valid() bool {
	switch m {
	case MethodEfectivo, MethodTarjeta, MethodTransferencia:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPendiente  PaymentStatus = "PENDIENTE"
	PaymentCompletado PaymentStatus = "COMPLETADO"
	PaymentAnulado    PaymentStatus = "ANULADO"
)

// Payment es el cobro de una cita. Montos en centavos para evitar
// aritmética de punto flotante con dinero.
type Payment struct {
	ID            string
	AppointmentID string
	OwnerID       string
	AmountCents   int64
	Method        Method
	Status        PaymentStatus
	RegisteredBy  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Invoice es el comprobante emitido al completarse un pago.
// La numeración es secuencial y la asigna la persistencia.
type Invoice struct {
	ID          string
	Sequence    int64
	PaymentID   string
	OwnerID     string
	AmountCents int64
	IssuedAt    time.Time
}

// Number es el número visible del comprobante, p.ej. "F-000042".
func (i Invoice) Number() string {
	return fmt.Sprintf("F-%06d", i.Sequence)
}
