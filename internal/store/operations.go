package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ukydev/motorcheck/internal/models"
)

// UpdateVehicle replaces the vehicle settings. An explicit edit may lower the
// odometer.
func (s *Store) UpdateVehicle(ctx context.Context, v models.VehicleSettings) error {
	if v.CurrentOdometer < 0 {
		return fmt.Errorf("%w: odometer must not be negative", ErrInvalid)
	}
	if v.UnitSystem == "" {
		v.UnitSystem = models.UnitKmPerGallon
	}
	if !models.IsValidUnitSystem(v.UnitSystem) {
		return fmt.Errorf("%w: unknown unit system %q", ErrInvalid, v.UnitSystem)
	}
	if v.Theme == "" {
		v.Theme = models.ThemeDark
	}
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		st.Vehicle = v
		return dirtyVehicle, nil
	})
}

// UpdateOdometer sets the current odometer reading.
func (s *Store) UpdateOdometer(ctx context.Context, km int) error {
	if km < 0 {
		return fmt.Errorf("%w: odometer must not be negative", ErrInvalid)
	}
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		st.Vehicle.CurrentOdometer = km
		return dirtyVehicle, nil
	})
}

// AddServiceDefinition appends a definition. An empty id is generated.
func (s *Store) AddServiceDefinition(ctx context.Context, def models.ServiceDefinition) (models.ServiceDefinition, error) {
	if err := validateDefinition(def); err != nil {
		return models.ServiceDefinition{}, err
	}
	if def.ID == "" {
		def.ID = newID()
	}
	err := s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		if findDefinition(st.ServiceDefinitions, def.ID) >= 0 {
			return 0, fmt.Errorf("%w: service %s", ErrDuplicateID, def.ID)
		}
		st.ServiceDefinitions = append(st.ServiceDefinitions, def)
		return dirtyDefinitions, nil
	})
	if err != nil {
		return models.ServiceDefinition{}, err
	}
	return def, nil
}

// UpdateServiceDefinition replaces the definition with the same id. Existing
// logs keep their recorded service name.
func (s *Store) UpdateServiceDefinition(ctx context.Context, def models.ServiceDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		i := findDefinition(st.ServiceDefinitions, def.ID)
		if i < 0 {
			return 0, fmt.Errorf("%w: service %s", ErrNotFound, def.ID)
		}
		st.ServiceDefinitions[i] = def
		return dirtyDefinitions, nil
	})
}

// ProgramService sets an explicit next due odometer for a service. The
// interval becomes the distance from the current odometer to the target.
func (s *Store) ProgramService(ctx context.Context, id string, target int) (models.ServiceDefinition, error) {
	var programmed models.ServiceDefinition
	err := s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		i := findDefinition(st.ServiceDefinitions, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: service %s", ErrNotFound, id)
		}
		if target <= st.Vehicle.CurrentOdometer {
			return 0, fmt.Errorf("%w: target %d must exceed current odometer %d", ErrInvalid, target, st.Vehicle.CurrentOdometer)
		}
		def := st.ServiceDefinitions[i]
		def.IntervalKm = target - st.Vehicle.CurrentOdometer
		def.NextDueOdometer = &target
		st.ServiceDefinitions[i] = def
		programmed = def
		return dirtyDefinitions, nil
	})
	return programmed, err
}

// DeleteServiceDefinition removes a definition and every log that references
// it.
func (s *Store) DeleteServiceDefinition(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		i := findDefinition(st.ServiceDefinitions, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: service %s", ErrNotFound, id)
		}
		st.ServiceDefinitions = append(st.ServiceDefinitions[:i:i], st.ServiceDefinitions[i+1:]...)
		return dirtyDefinitions | dropOrphanLogs(st), nil
	})
}

// ReplaceServiceDefinitions swaps the whole definition list. Logs of services
// that are no longer defined are removed.
func (s *Store) ReplaceServiceDefinitions(ctx context.Context, defs []models.ServiceDefinition) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("%w: service id is required", ErrInvalid)
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: service %s", ErrDuplicateID, d.ID)
		}
		seen[d.ID] = true
		if err := validateDefinition(d); err != nil {
			return err
		}
	}
	defs = cloneDefinitions(defs)
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		st.ServiceDefinitions = defs
		return dirtyDefinitions | dropOrphanLogs(st), nil
	})
}

// ResetServicesToDefault restores the predefined definitions. Logs of custom
// services go with them.
func (s *Store) ResetServicesToDefault(ctx context.Context) error {
	return s.ReplaceServiceDefinitions(ctx, models.PredefinedServices())
}

// ResetAll clears every log and restores the default vehicle and services.
// The theme preference survives.
func (s *Store) ResetAll(ctx context.Context) error {
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		theme := st.Vehicle.Theme
		*st = models.DefaultSnapshot()
		if theme != "" {
			st.Vehicle.Theme = theme
		}
		return dirtyAll, nil
	})
}

// AddServiceLog records a performed service. The service name is copied from
// the definition when empty, and the odometer advances when the log exceeds
// it.
func (s *Store) AddServiceLog(ctx context.Context, l models.ServiceLog) (models.ServiceLog, error) {
	if err := validateServiceLog(l); err != nil {
		return models.ServiceLog{}, err
	}
	if l.ID == "" {
		l.ID = newID()
	}
	err := s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		if findServiceLog(st.ServiceLogs, l.ID) >= 0 {
			return 0, fmt.Errorf("%w: service log %s", ErrDuplicateID, l.ID)
		}
		if strings.TrimSpace(l.ServiceName) == "" {
			i := findDefinition(st.ServiceDefinitions, l.ServiceID)
			if i < 0 {
				return 0, fmt.Errorf("%w: service name is required for unknown service %s", ErrInvalid, l.ServiceID)
			}
			l.ServiceName = st.ServiceDefinitions[i].Name
		}

		st.ServiceLogs = append(st.ServiceLogs, l)
		sortServiceLogs(st.ServiceLogs)
		changed := dirtyServiceLogs
		if l.Odometer > st.Vehicle.CurrentOdometer {
			st.Vehicle.CurrentOdometer = l.Odometer
			changed |= dirtyVehicle
		}
		return changed, nil
	})
	if err != nil {
		return models.ServiceLog{}, err
	}
	return l, nil
}

// UpdateServiceLog replaces the log with the same id.
func (s *Store) UpdateServiceLog(ctx context.Context, l models.ServiceLog) error {
	if err := validateServiceLog(l); err != nil {
		return err
	}
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		i := findServiceLog(st.ServiceLogs, l.ID)
		if i < 0 {
			return 0, fmt.Errorf("%w: service log %s", ErrNotFound, l.ID)
		}
		if strings.TrimSpace(l.ServiceName) == "" {
			l.ServiceName = st.ServiceLogs[i].ServiceName
		}
		st.ServiceLogs[i] = l
		sortServiceLogs(st.ServiceLogs)
		return dirtyServiceLogs, nil
	})
}

// DeleteServiceLog removes one log.
func (s *Store) DeleteServiceLog(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		i := findServiceLog(st.ServiceLogs, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: service log %s", ErrNotFound, id)
		}
		st.ServiceLogs = append(st.ServiceLogs[:i:i], st.ServiceLogs[i+1:]...)
		return dirtyServiceLogs, nil
	})
}

// AddFuelLog records a refuel and advances the odometer when the log exceeds
// it.
func (s *Store) AddFuelLog(ctx context.Context, l models.FuelLog) (models.FuelLog, error) {
	if err := validateFuelLog(l); err != nil {
		return models.FuelLog{}, err
	}
	if l.ID == "" {
		l.ID = newID()
	}
	err := s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		if findFuelLog(st.FuelLogs, l.ID) >= 0 {
			return 0, fmt.Errorf("%w: fuel log %s", ErrDuplicateID, l.ID)
		}
		st.FuelLogs = append(st.FuelLogs, l)
		sortFuelLogs(st.FuelLogs)
		changed := dirtyFuelLogs
		if l.Odometer > st.Vehicle.CurrentOdometer {
			st.Vehicle.CurrentOdometer = l.Odometer
			changed |= dirtyVehicle
		}
		return changed, nil
	})
	if err != nil {
		return models.FuelLog{}, err
	}
	return l, nil
}

// UpdateFuelLog replaces the refuel with the same id.
func (s *Store) UpdateFuelLog(ctx context.Context, l models.FuelLog) error {
	if err := validateFuelLog(l); err != nil {
		return err
	}
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		i := findFuelLog(st.FuelLogs, l.ID)
		if i < 0 {
			return 0, fmt.Errorf("%w: fuel log %s", ErrNotFound, l.ID)
		}
		st.FuelLogs[i] = l
		sortFuelLogs(st.FuelLogs)
		return dirtyFuelLogs, nil
	})
}

// DeleteFuelLog removes one refuel.
func (s *Store) DeleteFuelLog(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *models.Snapshot) (dirty, error) {
		i := findFuelLog(st.FuelLogs, id)
		if i < 0 {
			return 0, fmt.Errorf("%w: fuel log %s", ErrNotFound, id)
		}
		st.FuelLogs = append(st.FuelLogs[:i:i], st.FuelLogs[i+1:]...)
		return dirtyFuelLogs, nil
	})
}

func validateDefinition(d models.ServiceDefinition) error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return fmt.Errorf("%w: service name is required", ErrInvalid)
	case d.IntervalKm < 0:
		return fmt.Errorf("%w: interval km must not be negative", ErrInvalid)
	case d.IntervalMonths < 0:
		return fmt.Errorf("%w: interval months must not be negative", ErrInvalid)
	case d.NextDueOdometer != nil && *d.NextDueOdometer < 0:
		return fmt.Errorf("%w: next due odometer must not be negative", ErrInvalid)
	}
	return nil
}

func validateServiceLog(l models.ServiceLog) error {
	switch {
	case l.ServiceID == "":
		return fmt.Errorf("%w: service id is required", ErrInvalid)
	case l.Odometer < 0:
		return fmt.Errorf("%w: odometer must not be negative", ErrInvalid)
	case l.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalid)
	}
	return nil
}

func validateFuelLog(l models.FuelLog) error {
	switch {
	case l.Odometer < 0:
		return fmt.Errorf("%w: odometer must not be negative", ErrInvalid)
	case l.Volume < 0 || l.TotalCost < 0 || l.PricePerUnit < 0:
		return fmt.Errorf("%w: volume and cost must not be negative", ErrInvalid)
	case l.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalid)
	}
	return nil
}

func findDefinition(defs []models.ServiceDefinition, id string) int {
	for i, d := range defs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func findServiceLog(logs []models.ServiceLog, id string) int {
	for i, l := range logs {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func findFuelLog(logs []models.FuelLog, id string) int {
	for i, l := range logs {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// dropOrphanLogs removes logs whose service is not defined and reports
// whether the history changed.
func dropOrphanLogs(st *models.Snapshot) dirty {
	defined := make(map[string]bool, len(st.ServiceDefinitions))
	for _, d := range st.ServiceDefinitions {
		defined[d.ID] = true
	}
	kept := make([]models.ServiceLog, 0, len(st.ServiceLogs))
	for _, l := range st.ServiceLogs {
		if defined[l.ServiceID] {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(st.ServiceLogs) {
		return 0
	}
	st.ServiceLogs = kept
	return dirtyServiceLogs
}
