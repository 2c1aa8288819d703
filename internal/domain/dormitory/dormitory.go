package dormitory

import (
	"github.com/dormhub/backend/internal/domain/shared"
)

// Dormitory is the aggregate owning rooms, billing configuration and
// the billing cycle for one building.
type Dormitory struct {
	shared.BaseAggregateRoot
	Name    string          `json:"name" gorm:"not null"`
	Address string          `json:"address"`
	Config  DormitoryConfig `json:"config" gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Dormitory) TableName() string {
	return "dormitories"
}

// NewDormitory creates a new dormitory with the given configuration
func NewDormitory(name, address string, config DormitoryConfig) (*Dormitory, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Dormitory name cannot be empty")
	}
	return &Dormitory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           address,
		Config:            config,
	}, nil
}

// UpdateConfig replaces the billing configuration after validating it.
// Explicit admin edit; rooms referencing removed room types will start
// reporting a missing-configuration condition at price calculation.
func (d *Dormitory) UpdateConfig(config DormitoryConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	d.Config = config
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Rename updates the dormitory display name
func (d *Dormitory) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Dormitory name cannot be empty")
	}
	d.Name = name
	d.Touch()
	d.IncrementVersion()
	return nil
}
