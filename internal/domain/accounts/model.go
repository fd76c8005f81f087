package accounts

import "time"

// Role define los roles del sistema.
// @Enum ADMIN, VETERINARIO, ADMINISTRATIVO, PROPIETARIO
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleVeterinario    Role = "VETERINARIO"
	RoleAdministrativo Role = "ADMINISTRATIVO"
	RolePropietario    Role = "PROPIETARIO"
)

// Capability es una acción que un rol puede ejecutar.
// Los handlers chequean capacidades una sola vez por acción,
// en lugar de comparar roles ad-hoc.
type Capability string

const (
	CapManageUsers        Capability = "users:manage"
	CapManageCatalog      Capability = "catalog:manage"
	CapManageAppointments Capability = "appointments:manage"
	CapAttendAppointments Capability = "appointments:attend"
	CapRecordClinical     Capability = "clinical:record"
	CapRegisterPayments   Capability = "payments:register"
	CapSelfService        Capability = "self:service"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapManageUsers, CapManageCatalog, CapManageAppointments,
		CapAttendAppointments, CapRecordClinical, CapRegisterPayments,
		CapSelfService,
	},
	RoleVeterinario: {
		CapAttendAppointments, CapRecordClinical,
	},
	RoleAdministrativo: {
		CapManageAppointments, CapRegisterPayments,
	},
	RolePropietario: {
		CapSelfService,
	},
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

func (r Role) Can(c Capability) bool {
	for _, got := range roleCapabilities[r] {
		if got == c {
			return true
		}
	}
	return false
}

func (r Role) EsAdmin() bool { return r == RoleAdmin }

// User es un usuario del sistema (personal de la clínica o propietario).
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	Phone        string

	// Activo indica si el usuario puede acceder al sistema.
	Active bool

	// Control de bloqueo por intentos fallidos de login.
	FailedAttempts int
	LockedUntil    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
