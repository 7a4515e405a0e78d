package driver

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/utils"
)

const defaultDomain = "clubspeedtiming.com"

// Config holds Clubspeed API connection configuration
type Config struct {
	Subdomain      string `json:"subdomain" validate:"required,dnslabel" jsonschema:"title=Subdomain,description=Track subdomain; the part before the API domain"`
	PrivateKey     string `json:"private_key" validate:"required" jsonschema:"title=Private Key,description=API key sent as the key query parameter"`
	Domain         string `json:"domain,omitempty" validate:"omitempty,hostname" jsonschema:"title=Domain,default=clubspeedtiming.com"`
	RetryCount     int    `json:"retry_count,omitempty" validate:"gte=0,lte=10" jsonschema:"title=Retry Count,default=3,minimum=0,maximum=10"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" validate:"gte=0" jsonschema:"title=Timeout Seconds,default=30,minimum=0"`
}

func (c *Config) Validate() error {
	if err := utils.Validate(c); err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	if strings.Contains(c.Domain, "://") {
		return fmt.Errorf("domain should not contain a protocol prefix")
	}

	c.Domain = utils.Ternary(c.Domain == "", defaultDomain, c.Domain).(string)
	c.RetryCount = utils.Ternary(c.RetryCount == 0, constants.DefaultRetryCount, c.RetryCount).(int)
	c.TimeoutSeconds = utils.Ternary(c.TimeoutSeconds == 0, constants.DefaultTimeoutSeconds, c.TimeoutSeconds).(int)
	return nil
}
