package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/infersim/infersim/config"
)

var dumpConfigCmd = &cobra.Command{
	Use:   "dump-config <preset>",
	Short: "Print a preset merged with its defaults as YAML",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		applyLogLevel()
		cfg, err := config.Load(configPath, args[0])
		if err != nil {
			logrus.Fatalf("loading config: %v", err)
		}
		out, err := config.Dump(cfg)
		if err != nil {
			logrus.Fatalf("rendering config: %v", err)
		}
		fmt.Print(out)
	},
}
