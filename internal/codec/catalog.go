// Package codec converts between the domain model and the line-oriented
// plain-text notation used for manual backup and sharing, and validates
// that notation with line-numbered diagnostics.
package codec

import (
	"strings"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
)

// CatalogEntry describes one known exercise: its canonical name plus the
// attributes an imported Exercise record is stamped with.
type CatalogEntry struct {
	Name        string
	MuscleGroup model.MuscleGroup
	Type        model.EquipmentType
	Unilateral  bool
	Amplitude   model.Amplitude
}

// Catalog is the fixed, externally-supplied exercise lookup table. The
// codec only reads it: validation rejects names that are not listed, and
// import copies the listed attributes onto fresh Exercise records.
type Catalog struct {
	byName map[string]CatalogEntry
}

// NewCatalog builds a catalog from the given entries. Lookup is
// case-insensitive on the trimmed name.
func NewCatalog(entries []CatalogEntry) Catalog {
	byName := make(map[string]CatalogEntry, len(entries))
	for _, e := range entries {
		byName[strings.ToLower(strings.TrimSpace(e.Name))] = e
	}
	return Catalog{byName: byName}
}

// Lookup resolves an exercise name, tolerating case and surrounding
// whitespace.
func (c Catalog) Lookup(name string) (CatalogEntry, bool) {
	e, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// DefaultCatalog returns the built-in exercise table used by the CLI.
// Embedding applications supply their own.
func DefaultCatalog() Catalog {
	return NewCatalog([]CatalogEntry{
		{Name: "Жим лёжа", MuscleGroup: "chest", Type: model.EquipmentFreeWeight, Amplitude: model.AmplitudeFull},
		{Name: "Жим гантелей", MuscleGroup: "chest", Type: model.EquipmentFreeWeight, Unilateral: true, Amplitude: model.AmplitudeFull},
		{Name: "Приседания", MuscleGroup: "legs", Type: model.EquipmentFreeWeight, Amplitude: model.AmplitudeFull},
		{Name: "Жим ногами", MuscleGroup: "legs", Type: model.EquipmentMachine, Amplitude: model.AmplitudeFull},
		{Name: "Становая тяга", MuscleGroup: "back", Type: model.EquipmentFreeWeight, Amplitude: model.AmplitudeFull},
		{Name: "Подтягивания", MuscleGroup: "back", Type: model.EquipmentOwnWeight, Amplitude: model.AmplitudeFull},
		{Name: "Тяга верхнего блока", MuscleGroup: "back", Type: model.EquipmentCables, Amplitude: model.AmplitudeFull},
		{Name: "Тяга горизонтального блока", MuscleGroup: "back", Type: model.EquipmentCables, Amplitude: model.AmplitudeFull},
		{Name: "Жим стоя", MuscleGroup: "shoulders", Type: model.EquipmentFreeWeight, Amplitude: model.AmplitudeFull},
		{Name: "Махи гантелями", MuscleGroup: "shoulders", Type: model.EquipmentFreeWeight, Unilateral: true, Amplitude: model.AmplitudePartial},
		{Name: "Сгибания на бицепс", MuscleGroup: "arms", Type: model.EquipmentFreeWeight, Unilateral: true, Amplitude: model.AmplitudeFull},
		{Name: "Разгибания на трицепс", MuscleGroup: "arms", Type: model.EquipmentCables, Amplitude: model.AmplitudeFull},
	})
}
