package cmd

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/S35H47/Flight-Surety/messages"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/privval"
	"github.com/tendermint/tendermint/types"
)

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config files",
	Run:   initialize,
}

func initialize(cmd *cobra.Command, args []string) {
	configuration := config.DefaultConfig()
	configuration.SetRoot(rootDir)
	config.EnsureRoot(configuration.RootDir)

	configuration.LogLevel = "consensus:error,*:info"
	configuration.RPC.CORSAllowedOrigins = []string{"*"}
	configuration.P2P.AllowDuplicateIP = true
	configuration.Consensus.CreateEmptyBlocksInterval = time.Duration(10) * time.Second
	configuration.ValidateBasic()
	config.WriteConfigFile(rootDir+"/config/config.toml", configuration)

	privValKeyFile := configuration.PrivValidatorKeyFile()
	privValStateFile := configuration.PrivValidatorStateFile()
	privVal := privval.GenFilePV(privValKeyFile, privValStateFile)
	privVal.Save()

	nodeKeyFile := configuration.NodeKeyFile()
	p2p.LoadOrGenNodeKey(nodeKeyFile)

	genFile := configuration.GenesisFile()
	appState, _ := json.Marshal(messages.Genesis{Airlines: genAirlines})
	genDoc := types.GenesisDoc{
		ChainID:         "flightsurety",
		GenesisTime:     time.Now(),
		ConsensusParams: types.DefaultConsensusParams(),
		AppState:        appState,
	}
	for _, key := range genValidatorKeys {
		genDoc.Validators = append(genDoc.Validators, types.GenesisValidator{
			Address: key.Address(),
			PubKey:  key,
			Power:   genValidators[hex.EncodeToString(key[:])],
		})
	}
	genDoc.SaveAs(genFile)
}
