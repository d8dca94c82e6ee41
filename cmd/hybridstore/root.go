package hybridstore

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	root "github.com/soundprediction/go-hybridstore"
	"github.com/soundprediction/go-hybridstore/pkg/config"
)

var (
	cfgFile string
	dbPath  string
	rootCmd = &cobra.Command{
		Use:   "hybridstore",
		Short: "Hybridstore: embedded vector + graph store",
		Long: `Hybridstore is an embedded hybrid vector and graph store.
One database file holds embedded data points searched by cosine similarity
and a property graph of nodes and labeled edges, behind a single guarded
connection.

Complete documentation is available at https://github.com/soundprediction/go-hybridstore`,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hybridstore.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default from config; empty means in-memory)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".hybridstore" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hybridstore")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// openClient assembles a store from the loaded configuration, honoring the
// --db flag.
func openClient() (*root.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return root.Open(cfg)
}
