package protocol

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

// specCmd represents the read command
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	RunE: func(_ *cobra.Command, _ []string) error {
		var config any
		if destinationType == notSet {
			config = connector.Spec()
		} else {
			writerType := types.DestinationType(strings.ToUpper(destinationType))
			newFunc, found := destination.RegisteredWriters[writerType]
			if !found {
				return fmt.Errorf("invalid destination type has been passed [%s]", writerType)
			}
			config = newFunc().Spec()
		}

		spec, err := reflectSpec(config)
		if err != nil {
			return err
		}

		logger.Info(types.Message{Type: types.SpecMessage, Spec: spec})
		return logger.FileLogger(map[string]any{"spec": spec}, "spec", ".json")
	},
}

// reflectSpec renders a config struct as an inline JSON schema
func reflectSpec(config any) (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(config)

	spec := map[string]any{}
	if err := utils.Unmarshal(schema, &spec); err != nil {
		return nil, fmt.Errorf("failed to convert config schema: %s", err)
	}
	delete(spec, "$schema")
	delete(spec, "$id")
	return spec, nil
}
