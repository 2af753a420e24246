package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/sitepress/internal/logging"
)

// bindFlags binds cmd's flags to viper keys. Commands share config keys
// (build.output, build.path_prefix, ...), and viper keeps only the last
// binding per key, so binding from every init() would leave all but one
// command's flags dead. Binding from the running command's PreRunE keeps
// exactly one live binding per key.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// levelFlag is a pflag.Value for the --log-level flag.
type levelFlag logging.LogLevel

var _ pflag.Value = (*levelFlag)(nil)

func (f *levelFlag) String() string {
	switch logging.LogLevel(*f) {
	case logging.LevelDebug:
		return "debug"
	case logging.LevelInfo:
		return "info"
	case logging.LevelWarn:
		return "warn"
	case logging.LevelError:
		return "error"
	default:
		return "info"
	}
}

func (f *levelFlag) Set(value string) error {
	switch value {
	case "debug":
		*f = levelFlag(logging.LevelDebug)
	case "info":
		*f = levelFlag(logging.LevelInfo)
	case "warn":
		*f = levelFlag(logging.LevelWarn)
	case "error":
		*f = levelFlag(logging.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", value)
	}
	return nil
}

func (f *levelFlag) Type() string { return "level" }
