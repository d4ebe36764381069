// Package cmd implements the debug client's cobra command tree, generalized
// from the teacher's raw flag-parsed cmd/cli into subcommands with
// viper-backed config (grounded on turnforge-weewar's cmd/cli/cmd/root.go).
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	serverAddr string
	playerName string
	gameCode   string
	observer   bool
)

var rootCmd = &cobra.Command{
	Use:          "imperium-client",
	Short:        "Debug client for an imperium game server",
	SilenceUsage: true,
	Long: `imperium-client is a minimal terminal client for the imperium
websocket game server: it joins a lobby, starts the game, submits turns,
and prints every StateDelta as it arrives.

Examples:
  imperium-client play --server localhost:8080 --name Atlas
  imperium-client play --server localhost:8080 --name Borea --observer`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.imperium-client.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:8080", "server host:port (env: IMPERIUM_SERVER)")
	rootCmd.PersistentFlags().StringVar(&playerName, "name", "", "player name (env: IMPERIUM_NAME)")
	rootCmd.PersistentFlags().StringVar(&gameCode, "game-code", "", "game code, if the server requires one (env: IMPERIUM_GAME_CODE)")
	rootCmd.PersistentFlags().BoolVar(&observer, "observer", false, "join as an observer instead of a player")

	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("name", rootCmd.PersistentFlags().Lookup("name"))
	viper.BindPFlag("game-code", rootCmd.PersistentFlags().Lookup("game-code"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".imperium-client")
		}
	}

	viper.SetEnvPrefix("IMPERIUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func resolvedName() string {
	if rootCmd.PersistentFlags().Changed("name") {
		return playerName
	}
	return viper.GetString("name")
}

func resolvedServer() string {
	if rootCmd.PersistentFlags().Changed("server") {
		return serverAddr
	}
	if v := viper.GetString("server"); v != "" {
		return v
	}
	return "localhost:8080"
}

func resolvedGameCode() string {
	if rootCmd.PersistentFlags().Changed("game-code") {
		return gameCode
	}
	return viper.GetString("game-code")
}
