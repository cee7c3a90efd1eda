package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/fundscope/internal/utils"
	"github.com/sw33tLie/fundscope/pkg/acgfund"
	"github.com/sw33tLie/fundscope/pkg/storage"
	"github.com/sw33tLie/fundscope/pkg/theme"
	"github.com/sw33tLie/fundscope/pkg/whttp"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	  __                 _
	 / _|_   _ _ __   __| |___  ___ ___  _ __   ___
	| |_| | | | '_ \ / _' / __|/ __/ _ \| '_ \ / _ \
	|  _| |_| | | | | (_| \__ \ (_| (_) | |_) |  __/
	|_|  \__,_|_| |_|\__,_|___/\___\___/| .__/ \___|
	                                    |_|
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundscope",
	Short: "Read-only back office client for donor advised funds.",
	Long: LOGO + `fundscope logs into the fund administration back office and lets you browse
donor balances, advisor balances, users and custom reports from your terminal,
and export any of them to Excel.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fundscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("session", "", "Path to the session database (default: ~/.config/fundscope/session.sqlite)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colors in table output")

	viper.BindPFlag("session.path", rootCmd.PersistentFlags().Lookup("session"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".fundscope")
		viper.SetConfigType("yaml")
	}

	// FUNDSCOPE_ACGFUND_EMAIL sets acgfund.email
	viper.SetEnvPrefix("fundscope")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults before a missing config file gets written out
	viper.SetDefault("acgfund.baseurl", acgfund.DEFAULT_BASE_URL)
	viper.SetDefault("acgfund.email", "")
	viper.SetDefault("acgfund.password", "")
	viper.SetDefault("session.path", "")
	viper.SetDefault("theme.accent", theme.DefaultAccent)
	viper.SetDefault("theme.maxwidth", theme.DefaultMaxWidth)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.fundscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// newAPIClient builds the gateway client from config and the --proxy flag.
func newAPIClient(cmd *cobra.Command) (*acgfund.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	hc, err := whttp.NewClient(proxy)
	if err != nil {
		return nil, err
	}
	return acgfund.NewClient(viper.GetString("acgfund.baseurl"),
		acgfund.WithHTTPClient(hc),
		acgfund.WithLogger(utils.Log),
	)
}

func sessionPath() (string, error) {
	return utils.GetAbsSessionPath(viper.GetString("session.path"))
}

func openSessionDB() (*storage.DB, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	utils.Log.Debugf("Using session database %s", path)
	return storage.Open(path, storage.DefaultDBTimeout)
}

// currentTheme is the single theme every renderer in a run uses.
func currentTheme(cmd *cobra.Command) theme.Theme {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		t := theme.Plain()
		t.MaxCellWidth = viper.GetInt("theme.maxwidth")
		return t
	}
	return theme.New(viper.GetString("theme.accent"), viper.GetInt("theme.maxwidth"))
}
