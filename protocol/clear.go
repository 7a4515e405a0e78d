package protocol

import (
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear-state",
	Short: "Olake clear command to reset bookmarks of selected streams",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if streamsPath == "" {
			return fmt.Errorf("--streams not passed")
		} else if statePath == "" {
			return fmt.Errorf("--state not passed")
		}

		catalog = &types.Catalog{}
		if err := utils.UnmarshalFile(streamsPath, catalog, false); err != nil {
			return err
		}

		state = types.NewState()
		return utils.UnmarshalFile(statePath, state, false)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		clearStreams := []types.StreamInterface{}
		for _, stream := range catalog.Streams {
			if stream != nil && stream.Stream != nil && catalog.IsSelected(stream) {
				clearStreams = append(clearStreams, stream)
			}
		}
		if len(clearStreams) == 0 {
			logger.Infof("No streams selected for clearing")
			return nil
		}

		connector.SetupState(state)
		newState := connector.ClearState(clearStreams)
		logger.Infof("State for %d selected streams cleared successfully.", len(clearStreams))
		logger.LogState(newState)
		return nil
	},
}
