package pets

import "time"

// Species define las especies soportadas.
// @Enum PERRO, GATO, AVE, ROEDOR, REPTIL, OTRO
type Species string

const (
	SpeciesPerro  Species = "PERRO"
	SpeciesGato   Species = "GATO"
	SpeciesAve    Species = "AVE"
	SpeciesRoedor Species = "ROEDOR"
	SpeciesReptil Species = "REPTIL"
	SpeciesOtro   Species = "OTRO"
)

func (s Species) Valid() bool {
	switch s {
	case SpeciesPerro, SpeciesGato, SpeciesAve, SpeciesRoedor, SpeciesReptil, SpeciesOtro:
		return true
	}
	return false
}

// Sex define el sexo de la mascota.
// @Enum M, H
type Sex string

const (
	SexMacho  Sex = "M"
	SexHembra Sex = "H"
)

// Pet representa una mascota atendida en la clínica.
type Pet struct {
	ID      string
	OwnerID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex // opcional

	AgeYears    int
	WeightGrams *int64 // opcional

	Notes string

	// Active indica si la mascota sigue en la clínica
	// (false tras baja o fallecimiento).
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transfer registra el traspaso de una mascota a otro propietario.
type Transfer struct {
	ID          string
	PetID       string
	FromOwnerID string
	ToOwnerID   string
	Reason      string
	CreatedAt   time.Time
}
