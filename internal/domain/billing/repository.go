package billing

import "context"

type Repository interface {
	CreatePayment(ctx context.Context, p Payment) error
	UpdatePayment(ctx context.Context, p Payment) error
	GetPaymentByID(ctx context.Context, id string) (Payment, error)
	GetPaymentByAppointment(ctx context.Context, appointmentID string) (Payment, error)
	ListPaymentsByOwner(ctx context.Context, ownerID string) ([]Payment, error)

	// CreateInvoice asigna el número secuencial en forma atómica y
	// devuelve el comprobante almacenado.
	CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	GetInvoiceByPayment(ctx context.Context, paymentID string) (Invoice, error)
	ListInvoicesByOwner(ctx context.Context, ownerID string) ([]Invoice, error)
}
