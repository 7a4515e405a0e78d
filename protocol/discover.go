package protocol

import (
	"errors"
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/spf13/cobra"
)

// discoverCmd represents the read command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "discover command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == notSet {
			return fmt.Errorf("--config not passed")
		}

		return utils.UnmarshalFile(configPath, connector.GetConfigRef(), true)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := connector.Setup(cmd.Context()); err != nil {
			return err
		}

		streams, err := connector.Discover(cmd.Context())
		if err != nil {
			return err
		}
		if len(streams) == 0 {
			return errors.New("no streams found in connector")
		}

		catalog := types.GetWrappedCatalog(streams)
		logger.Info(types.Message{Type: types.CatalogMessage, Catalog: catalog})
		logger.LogCatalog(catalog)
		return nil
	},
}
