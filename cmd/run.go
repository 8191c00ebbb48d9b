package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/S35H47/Flight-Surety/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/node"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/privval"
	"github.com/tendermint/tendermint/proxy"
	dbm "github.com/tendermint/tm-db"
)

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run node",
	Run:   run,
}

func run(cmd *cobra.Command, args []string) {
	snapshots, _ := dbm.NewGoLevelDB("flightsurety", rootDir+"/data")
	// Genesis airlines arrive through InitChain from the genesis document.
	flightSurety := app.NewFlightSuretyChain(nil, snapshots)

	configuration := config.DefaultConfig()
	viper.SetConfigFile(rootDir + "/config/config.toml")
	viper.ReadInConfig()
	viper.Unmarshal(configuration)
	configuration.SetRoot(rootDir)
	configuration.ValidateBasic()

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	logger, _ = flags.ParseLogLevel(configuration.LogLevel, logger, config.DefaultLogLevel())

	// Notifications go to the log for the oracle client population.
	id, notifications := flightSurety.Bus().Subscribe()
	defer flightSurety.Bus().Unsubscribe(id)
	go func() {
		for event := range notifications {
			keyValues := []interface{}{"type", string(event.Type)}
			for key, value := range event.Attributes {
				keyValues = append(keyValues, key, value)
			}
			logger.Info("notification", keyValues...)
		}
	}()

	pv := privval.LoadFilePV(
		configuration.PrivValidatorKeyFile(),
		configuration.PrivValidatorStateFile(),
	)

	nodeKey, _ := p2p.LoadNodeKey(configuration.NodeKeyFile())

	node, _ := node.NewNode(
		configuration,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(flightSurety),
		node.DefaultGenesisDocProviderFunc(configuration),
		node.DefaultDBProvider,
		node.DefaultMetricsProvider(configuration.Instrumentation),
		logger)

	node.Start()
	defer func() {
		node.Stop()
		node.Wait()
	}()

	sign := make(chan os.Signal, 1)
	signal.Notify(sign, syscall.SIGINT, syscall.SIGTERM)
	<-sign
	os.Exit(0)
}
