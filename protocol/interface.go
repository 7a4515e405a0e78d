package protocol

import (
	"github.com/datazip-inc/olake-clubspeed/drivers/abstract"
)

// Driver is what a source connector hands to RegisterDriver
type Driver interface {
	abstract.DriverInterface
}
