package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/S35H47/Flight-Surety/crypto"
	"github.com/S35H47/Flight-Surety/messages"
	"github.com/spf13/cobra"
)

var (
	privKeyFile string
	pubKeyFile  string
)

var SignCmd = &cobra.Command{
	Use:   "sign [transaction.json]",
	Short: "Sign a transaction envelope for broadcast",
	Args:  cobra.ExactArgs(1),
	Run:   sign,
}

func init() {
	SignCmd.Flags().StringVar(&privKeyFile, "priv", "privkey.pem", "PEM file with the caller's private key")
	SignCmd.Flags().StringVar(&pubKeyFile, "pub", "pubkey.pem", "PEM file with the caller's public key")
}

// sign loads the caller's keypair, stamps the caller identity onto the
// envelope, signs its packed fields and prints the base64 transaction
// ready for broadcast_tx.
func sign(cmd *cobra.Command, args []string) {
	privKey, pubKey := crypto.LoadKeys(privKeyFile, pubKeyFile)
	raw, _ := ioutil.ReadFile(args[0])
	var transaction messages.Transaction
	_ = json.Unmarshal(raw, &transaction)
	transaction.Caller = hex.EncodeToString(pubKey)
	transaction.Signature = crypto.Sign(privKey, transaction.SigningBytes())
	signed, _ := json.Marshal(transaction)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(signed)))
	base64.StdEncoding.Encode(encoded, signed)
	fmt.Println(string(encoded))
}
