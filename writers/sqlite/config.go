package sqlite

import (
	"github.com/datazip-inc/olake-clubspeed/utils"
)

type Config struct {
	// Path of the database file; created when missing
	Path string `json:"path" validate:"required"`
	// TablePrefix is prepended to every stream table
	TablePrefix string `json:"table_prefix,omitempty" validate:"omitempty,alphanum"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}
