package services

import "time"

// ServiceType define los tipos de servicio ofrecidos.
// @Enum CONSULTA, VACUNACION, DESPARASITACION, CIRUGIA, CONTROL_PESO, PELUQUERIA, VENTA_PRODUCTOS, OTRO
type ServiceType string

const (
	TypeConsulta        ServiceType = "CONSULTA"
	TypeVacunacion      ServiceType = "VACUNACION"
	TypeDesparasitacion ServiceType = "DESPARASITACION"
	TypeCirugia         ServiceType = "CIRUGIA"
	TypeControlPeso     ServiceType = "CONTROL_PESO"
	TypePeluqueria      ServiceType = "PELUQUERIA"
	TypeVentaProductos  ServiceType = "VENTA_PRODUCTOS"
	TypeOtro            ServiceType = "OTRO"
)

func (t ServiceType) Valid() bool {
	switch t {
	case TypeConsulta, TypeVacunacion, TypeDesparasitacion, TypeCirugia,
		TypeControlPeso, TypePeluqueria, TypeVentaProductos, TypeOtro:
		return true
	}
	return false
}

// Service es un servicio del catálogo de la clínica.
type Service struct {
	ID   string
	Type ServiceType // único en el catálogo

	DurationMinutes int   // mínimo 15
	PriceCents      int64 // precio en centavos

	Description string
	Active      bool

	// Color hexadecimal para el calendario.
	CalendarColor string

	CreatedAt time.Time
	UpdatedAt time.Time
}
