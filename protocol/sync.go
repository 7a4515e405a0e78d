package protocol

import (
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Olake sync command",
	Long:  `Sync command reads the selected streams from the source, writes records to the destination and persists bookmarks`,
	Example: `
// Base command, records as JSON lines on stdout:
clubspeed sync --config path/to/config

// With destination, streams and state:
clubspeed sync --config path/to/config --destination path/to/destination --streams path/to/streams --state path/to/state
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == notSet {
			return fmt.Errorf("--config not passed")
		}

		// unmarshal source config
		if err := utils.UnmarshalFile(configPath, connector.GetConfigRef(), true); err != nil {
			return err
		}

		destinationConfig = &types.WriterConfig{Type: types.Stdout}
		if destinationConfigPath != notSet {
			if err := utils.UnmarshalFile(destinationConfigPath, destinationConfig, true); err != nil {
				return err
			}
		}

		catalog = nil
		if streamsPath != "" {
			catalog = &types.Catalog{}
			if err := utils.UnmarshalFile(streamsPath, catalog, false); err != nil {
				return err
			}
		}

		state = types.NewState()
		if statePath != "" {
			if err := utils.UnmarshalFile(statePath, state, false); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		syncID := utils.ULID()
		viper.Set(constants.SyncID, syncID)
		logger.Infof("starting sync[%s]", syncID)

		if err := connector.Setup(cmd.Context()); err != nil {
			return err
		}

		streams, err := connector.Discover(cmd.Context())
		if err != nil {
			return err
		}

		// no catalog means every stream with its default mode
		if catalog == nil {
			catalog = types.GetWrappedCatalog(streams)
		}

		classifications, err := GetStreamsClassification(catalog, streams, state)
		if err != nil {
			return err
		}

		pool, err := destination.NewWriterPool(cmd.Context(), destinationConfig)
		if err != nil {
			return err
		}

		connector.SetupState(state)
		readErr := connector.Read(cmd.Context(), pool, classifications.FullLoadStreams, classifications.IncrementalStreams)

		logger.Infof("sync[%s] wrote %d records", syncID, pool.SyncedRecords())
		if !noSave {
			logger.LogState(connector.State())
		}

		if readErr != nil {
			return fmt.Errorf("sync[%s] finished with errors: %s", syncID, readErr)
		}
		return nil
	},
}
