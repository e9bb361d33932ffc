package providers

import (
	"creatorstats/internal/structures"
	"errors"
	"fmt"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.String())
	}

	if c.conf.Storage.Driver != "memory" && c.conf.Storage.Path == "" {
		return fmt.Errorf("invalid config: storage.path is required for the %s driver", c.conf.Storage.Driver)
	}
	if c.conf.Quota.MinInterval < 0 || c.conf.Quota.ProbeSkipWindow < 0 {
		return errors.New("invalid config: quota intervals must not be negative")
	}
	if c.conf.Collection.Enabled && c.conf.Collection.CheckInterval <= 0 {
		return errors.New("invalid config: collection.checkInterval must be positive when collection is enabled")
	}
	return nil
}
