package driver

import (
	"context"
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/drivers/abstract"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
)

// Clubspeed driver implementation
type Clubspeed struct {
	config    *Config
	client    *Client
	paginator *Paginator
}

func (c *Clubspeed) GetConfigRef() abstract.Config {
	c.config = &Config{}
	return c.config
}

func (c *Clubspeed) Spec() any {
	return Config{}
}

func (c *Clubspeed) Type() string {
	return string(constants.Clubspeed)
}

func (c *Clubspeed) Setup(_ context.Context) error {
	if err := c.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}

	c.client = NewClient(c.config)
	c.paginator = NewPaginator(c.client, c.client.Endpoint)
	logger.Infof("configured clubspeed source for %s.%s", c.config.Subdomain, c.config.Domain)
	return nil
}

// Check verifies the private key against the payments resource
func (c *Clubspeed) Check(ctx context.Context) error {
	return c.client.IsAuthorized(ctx)
}

func (c *Clubspeed) GetStreamNames(_ context.Context) ([]string, error) {
	return StreamNames(), nil
}

func (c *Clubspeed) ProduceSchema(_ context.Context, stream string) (*types.Stream, error) {
	definition, err := lookupStream(stream)
	if err != nil {
		return nil, err
	}
	return definition.stream(stream), nil
}

func (c *Clubspeed) StreamRecords(ctx context.Context, stream types.StreamInterface, filter *types.Filter, cb abstract.BackfillMsgFn) error {
	definition, err := lookupStream(stream.Name())
	if err != nil {
		return err
	}
	return c.paginator.Fetch(ctx, definition.Endpoint, filter, RecordFn(cb))
}
