package protocol

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/drivers/abstract"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const notSet = "not-set"

var (
	configPath              string
	destinationConfigPath   string
	destinationType         string
	statePath               string
	streamsPath             string
	noSave                  bool
	encryptionKey           string
	logLevel                string
	stateCheckpointInterval int
	envFile                 string
	catalog                 *types.Catalog
	state                   *types.State
	destinationConfig       *types.WriterConfig

	commands     = []*cobra.Command{}
	sourceDriver Driver
	connector    *abstract.AbstractDriver
)

type StreamClassification struct {
	SelectedStreams    []string
	IncrementalStreams []types.StreamInterface
	FullLoadStreams    []types.StreamInterface
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "olake",
	Short: "root command",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'olake --help' to display usage guide", args[0])
		}

		return nil
	},
}

// initRuntime sets the viper keys every command relies on and starts the logger
func initRuntime() error {
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	viper.SetDefault(constants.ConfigFolder, os.TempDir())
	viper.SetDefault(constants.StateCheckpointInterval, constants.DefaultStateCheckpointInterval)

	if !noSave {
		configFolder := utils.Ternary(configPath == notSet, filepath.Dir(destinationConfigPath), filepath.Dir(configPath)).(string)
		streamsPathEnv := utils.Ternary(streamsPath == "", filepath.Join(configFolder, "streams.json"), streamsPath).(string)
		statePathEnv := utils.Ternary(statePath == "", filepath.Join(configFolder, "state.json"), statePath).(string)
		viper.Set(constants.ConfigFolder, configFolder)
		viper.Set(constants.StatePath, statePathEnv)
		viper.Set(constants.StreamsPath, streamsPathEnv)
	}

	if encryptionKey != "" {
		viper.Set(constants.EncryptionKey, encryptionKey)
	}
	if logLevel != "" {
		viper.Set(constants.LogLevel, logLevel)
	}
	if stateCheckpointInterval > 0 {
		viper.Set(constants.StateCheckpointInterval, stateCheckpointInterval)
	}

	// logger uses CONFIG_FOLDER
	logger.Init()

	// checkpoint interval is read here, after flags are parsed
	connector = abstract.NewAbstractDriver(RootCmd.Context(), sourceDriver)
	return nil
}

// loadEnvFile exports the file's variables; OLAKE_* ones reach viper through
// AutomaticEnv. Variables already set in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file[%s]: %s", path, err)
	}
	return nil
}

func CreateRootCommand(_ bool, driver Driver) *cobra.Command {
	RootCmd.AddCommand(commands...)
	sourceDriver = driver

	return RootCmd
}

// GetStreamsClassification resolves the catalog against the source streams.
//
// Configured streams missing a sync mode, cursor or key inherit them from the
// source. Streams that are not selected, unknown to the source or invalid are
// skipped with a warning; an incremental stream that still has no cursor is
// kept so that the sync rejects it before any request. Bookmarks of streams
// outside the selection are dropped from state.
func GetStreamsClassification(catalog *types.Catalog, streams []*types.Stream, state *types.State) (*StreamClassification, error) {
	classifications := &StreamClassification{
		SelectedStreams:    []string{},
		IncrementalStreams: []types.StreamInterface{},
		FullLoadStreams:    []types.StreamInterface{},
	}
	sources := types.StreamsToMap(streams...)
	selectedNames := []string{}

	for _, elem := range catalog.Streams {
		if elem == nil || elem.Stream == nil {
			continue
		}
		if elem.Stream.Namespace == "" {
			elem.Stream.Namespace = constants.DefaultNamespace
		}
		if !catalog.IsSelected(elem) {
			logger.Debugf("Skipping stream %s; not in selected streams.", elem.ID())
			continue
		}

		source, found := sources[elem.ID()]
		if !found {
			logger.Warnf("Skipping; Configured Stream %s not found in source", elem.ID())
			continue
		}
		inheritDefaults(elem.Stream, source)

		if elem.Stream.SyncMode == types.INCREMENTAL && elem.Stream.CursorField == "" {
			logger.Warnf("Configured Stream %s is incremental without a replication key", elem.ID())
		} else if err := elem.Validate(source); err != nil {
			logger.Warnf("Skipping; Configured Stream %s found invalid due to reason: %s", elem.ID(), err)
			continue
		}

		classifications.SelectedStreams = append(classifications.SelectedStreams, elem.ID())
		selectedNames = append(selectedNames, elem.Name())
		switch elem.Stream.SyncMode {
		case types.INCREMENTAL:
			classifications.IncrementalStreams = append(classifications.IncrementalStreams, elem)
		default:
			classifications.FullLoadStreams = append(classifications.FullLoadStreams, elem)
		}
	}

	if state != nil {
		state.Retain(selectedNames...)
	}
	if len(classifications.SelectedStreams) == 0 {
		return nil, fmt.Errorf("no valid streams found in catalog")
	}

	logger.Infof("Valid selected streams are %s", strings.Join(classifications.SelectedStreams, ", "))
	return classifications, nil
}

func inheritDefaults(configured, source *types.Stream) {
	if configured.SyncMode == "" {
		configured.SyncMode = source.SyncMode
	}
	if configured.SyncMode == types.INCREMENTAL && configured.CursorField == "" {
		configured.CursorField = source.CursorField
	}
	if configured.SourceDefinedPrimaryKey.Len() == 0 {
		configured.SourceDefinedPrimaryKey = source.SourceDefinedPrimaryKey
	}
	if configured.SupportedSyncModes.Len() == 0 {
		configured.SupportedSyncModes = source.SupportedSyncModes
	}
	if configured.AvailableCursorFields.Len() == 0 {
		configured.AvailableCursorFields = source.AvailableCursorFields
	}
}

func init() {
	// assigned here rather than in the literal: initRuntime refers to RootCmd
	RootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initRuntime()
	}
	commands = append(commands, specCmd, checkCmd, discoverCmd, syncCmd, clearCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", notSet, "(Required) Config for connector")
	RootCmd.PersistentFlags().StringVarP(&destinationConfigPath, "destination", "", notSet, "(Optional) Destination config for connector; records go to stdout when not set")
	RootCmd.PersistentFlags().StringVarP(&destinationType, "destination-type", "", notSet, "Destination type for spec")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "catalog", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "streams", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "(Optional) State for connector")
	RootCmd.PersistentFlags().BoolVarP(&noSave, "no-save", "", false, "(Optional) Flag to skip logging artifacts in file")
	RootCmd.PersistentFlags().StringVarP(&encryptionKey, "encryption-key", "", "", "(Optional) Decryption key. Provide the ARN of a KMS key or a custom string based on your encryption configuration.")
	RootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "(Optional) Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().IntVarP(&stateCheckpointInterval, "state-checkpoint-interval", "", 0, "(Optional) Emit state after this many records per stream")
	RootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "", "", "(Optional) dotenv file with OLAKE_* variables")

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
