package owners

import "time"

// Owner es el propietario de una o más mascotas.
// Puede estar vinculado 1:1 a un usuario del sistema (autoservicio).
type Owner struct {
	ID     string
	UserID string // opcional: usuario PROPIETARIO asociado

	FullName  string
	Documento string // documento de identidad, único
	Phone     string
	Email     string
	Address   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
