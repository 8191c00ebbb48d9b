package app_test

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"testing"

	tendermint "github.com/tendermint/tendermint/abci/types"
	dbm "github.com/tendermint/tm-db"

	"github.com/S35H47/Flight-Surety/app"
	"github.com/S35H47/Flight-Surety/crypto"
	"github.com/S35H47/Flight-Surety/messages"
	"github.com/S35H47/Flight-Surety/modules"
)

func encode(payload interface{}) []byte {
	raw, _ := json.Marshal(payload)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(encoded, raw)
	return encoded
}

func deliver(t *testing.T, fsc *app.FlightSuretyChain, transaction messages.Transaction) tendermint.ResponseDeliverTx {
	t.Helper()
	return fsc.DeliverTx(tendermint.RequestDeliverTx{Tx: encode(transaction)})
}

func mustDeliver(t *testing.T, fsc *app.FlightSuretyChain, transaction messages.Transaction) tendermint.ResponseDeliverTx {
	t.Helper()
	response := deliver(t, fsc, transaction)
	if response.Code != 0 {
		t.Fatalf("Failed to deliver %s: %s", transaction.TxType, response.Log)
	}
	return response
}

func eventAttribute(response tendermint.ResponseDeliverTx, key string) string {
	for _, event := range response.Events {
		for _, pair := range event.Attributes {
			if string(pair.Key) == key {
				return string(pair.Value)
			}
		}
	}
	return ""
}

// registerHolders delivers oracle registrations until enough oracles hold
// the request index, the way the oracle client population joins a network.
func registerHolders(t *testing.T, fsc *app.FlightSuretyChain, index int64, count int) []string {
	t.Helper()
	var holders []string
	for i := 0; len(holders) < count; i++ {
		if i >= 500 {
			t.Fatalf("Failed to find %d oracles holding index %d", count, index)
		}
		identity := "oracle-" + strconv.Itoa(i)
		mustDeliver(t, fsc, messages.Transaction{
			TxType: messages.TxRegisterOracle,
			Caller: identity,
			Fee:    modules.RegistrationFee,
		})
		indexes, err := fsc.New.OracleIndexes(identity)
		if err != nil {
			t.Fatalf("Failed to read oracle indexes: %v", err)
		}
		for _, assigned := range indexes {
			if assigned == index {
				holders = append(holders, identity)
				break
			}
		}
	}
	return holders
}

// TestScenario walks the protocol end to end: bootstrap admissions, a
// quorum admission, an oracle request settled by majority and an insurance
// payout on the settled flight.
func TestScenario(t *testing.T) {
	fsc := app.NewFlightSuretyChain([]string{"A1"}, dbm.NewMemDB())
	id, notifications := fsc.Bus().Subscribe()
	defer fsc.Bus().Unsubscribe(id)

	// A1 funds itself, then votes in A2..A5 during bootstrap.
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxFundAirline, Caller: "A1", Amount: 10 * modules.UnitEther})
	for _, candidate := range []string{"A2", "A3", "A4", "A5"} {
		mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxRegisterAirline, Caller: "A1", Candidate: candidate})
		if !fsc.New.Airlines.IsRegistered(candidate) {
			t.Fatalf("Failed bootstrap admission of %s", candidate)
		}
		mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxFundAirline, Caller: candidate, Amount: 10 * modules.UnitEther})
	}

	// A6 needs votes beyond quorum=3: three votes are not enough.
	for _, voter := range []string{"A1", "A2", "A3"} {
		mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxRegisterAirline, Caller: voter, Candidate: "A6"})
	}
	if fsc.New.Airlines.IsRegistered("A6") {
		t.Fatalf("Failed: A6 registered with only quorum votes")
	}
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxRegisterAirline, Caller: "A4", Candidate: "A6"})
	if !fsc.New.Airlines.IsRegistered("A6") {
		t.Fatalf("Failed quorum admission of A6")
	}

	// Flight and oracle round.
	timestamp := int64(1700000000)
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxRegisterFlight, Caller: "A1", Airline: "A1", Designator: "F100", Timestamp: timestamp})
	response := mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxFetchFlightStatus, Caller: "alice", Airline: "A1", Designator: "F100", Timestamp: timestamp})
	index, err := strconv.ParseInt(eventAttribute(response, "index"), 10, 64)
	if err != nil {
		t.Fatalf("Failed to read request index from events: %v", err)
	}
	holders := registerHolders(t, fsc, index, 3)
	for _, holder := range holders {
		mustDeliver(t, fsc, messages.Transaction{
			TxType:     messages.TxSubmitOracleResponse,
			Caller:     holder,
			Index:      index,
			Airline:    "A1",
			Designator: "F100",
			Timestamp:  timestamp,
			StatusCode: modules.StatusLateAirline,
		})
	}
	if fsc.New.Flights.Status("F100", timestamp) != modules.StatusLateAirline {
		t.Fatalf("Failed to settle flight by majority")
	}
	late := deliver(t, fsc, messages.Transaction{
		TxType:     messages.TxSubmitOracleResponse,
		Caller:     holders[0],
		Index:      index,
		Airline:    "A1",
		Designator: "F100",
		Timestamp:  timestamp,
		StatusCode: modules.StatusLateAirline,
	})
	if late.Code == 0 {
		t.Errorf("Failed to reject response on closed request")
	}

	reports := 0
	for drained := false; !drained; {
		select {
		case event := <-notifications:
			if event.Type == modules.EventOracleReport {
				reports++
			}
		default:
			drained = true
		}
	}
	if reports != 1 {
		t.Errorf("Failed: %d oracle reports, want exactly 1", reports)
	}

	// Insurance on the settled flight.
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxBuyInsurance, Caller: "bob", Designator: "F100", Timestamp: timestamp, Premium: modules.UnitEther})
	duplicate := deliver(t, fsc, messages.Transaction{TxType: messages.TxBuyInsurance, Caller: "bob", Designator: "F100", Timestamp: timestamp, Premium: modules.UnitEther})
	if duplicate.Code == 0 {
		t.Errorf("Failed to reject duplicate insurance")
	}
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxWithdrawCompensation, Caller: "bob", Designator: "F100", Timestamp: timestamp})
	payouts := fsc.New.Insurance.Payouts
	if len(payouts) != 1 || payouts[0].Amount != modules.UnitEther*15/10 {
		t.Errorf("Failed to credit 1.5x the escrow balance")
	}
}

func TestDeliverRejectsMalformed(t *testing.T) {
	fsc := app.NewFlightSuretyChain([]string{"A1"}, dbm.NewMemDB())
	response := deliver(t, fsc, messages.Transaction{TxType: "TxBogus"})
	if response.Code == 0 {
		t.Errorf("Failed to reject unknown transaction type")
	}
	response = deliver(t, fsc, messages.Transaction{TxType: messages.TxFundAirline, Caller: "A1", Amount: -1})
	if response.Code == 0 {
		t.Errorf("Failed to reject negative amount")
	}
}

func TestCheckTxSignature(t *testing.T) {
	fsc := app.NewFlightSuretyChain(nil, dbm.NewMemDB())
	privKey, pubKey := crypto.GenerateKeys()
	transaction := messages.Transaction{
		TxType: messages.TxRegisterOracle,
		Caller: hex.EncodeToString(pubKey),
		Fee:    modules.RegistrationFee,
	}
	transaction.Signature = crypto.Sign(privKey, transaction.SigningBytes())
	response := fsc.CheckTx(tendermint.RequestCheckTx{Tx: encode(transaction)})
	if response.Code != 0 {
		t.Errorf("Failed to accept signed transaction: %s", response.Log)
	}
	transaction.Fee = 2 * modules.RegistrationFee // signature no longer covers the envelope
	response = fsc.CheckTx(tendermint.RequestCheckTx{Tx: encode(transaction)})
	if response.Code == 0 {
		t.Errorf("Failed to reject tampered transaction")
	}
}

func TestInitChainGenesis(t *testing.T) {
	fsc := app.NewFlightSuretyChain(nil, dbm.NewMemDB())
	appState, _ := json.Marshal(messages.Genesis{Airlines: []string{"A1", "A2"}})
	fsc.InitChain(tendermint.RequestInitChain{AppStateBytes: appState})
	for _, airline := range []string{"A1", "A2"} {
		if !fsc.New.Airlines.IsRegistered(airline) {
			t.Errorf("Failed to admit genesis airline %s", airline)
		}
	}
	if fsc.New.Airlines.IsParticipant("A1") {
		t.Errorf("Failed: genesis airline participates without funding")
	}
}

func TestCommitRotation(t *testing.T) {
	fsc := app.NewFlightSuretyChain([]string{"A1"}, dbm.NewMemDB())
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxFundAirline, Caller: "A1", Amount: modules.UnitEther})
	first := fsc.Commit()
	if fsc.Height != 1 || len(first.Data) == 0 {
		t.Errorf("Failed first commit")
	}
	if fsc.New.Airlines.Registry["A1"].Funds != modules.UnitEther {
		t.Errorf("Failed to carry funds into the next block state")
	}
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxRegisterFlight, Caller: "A1", Airline: "A1", Designator: "F100", Timestamp: 1700000000})
	fsc.Commit()
	if len(fsc.Confirmed) != 1 {
		t.Errorf("Failed to confirm prior state on second commit")
	}
	fsc.Commit() // queries serve the last confirmed state, two commits behind

	query := messages.Query{QrType: messages.QueryFlight, Designator: "F100", Timestamp: 1700000000}
	response := fsc.Query(tendermint.RequestQuery{Data: encode(query)})
	var flight modules.Flight
	if err := json.Unmarshal(response.Value, &flight); err != nil {
		t.Fatalf("Failed to decode flight query: %v", err)
	}
	if flight.Designator != "F100" {
		t.Errorf("Failed to query confirmed flight")
	}
}

func TestQueryOutOfRangeHeight(t *testing.T) {
	fsc := app.NewFlightSuretyChain([]string{"A1"}, dbm.NewMemDB())
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxFundAirline, Caller: "A1", Amount: modules.UnitEther})
	fsc.Commit()
	fsc.Commit()
	query := messages.Query{QrType: messages.QueryState}
	for _, height := range []int64{-1, 1, 5, 100} {
		response := fsc.Query(tendermint.RequestQuery{Data: encode(query), Height: height})
		if len(response.Value) != 0 {
			t.Errorf("Failed: query at height %d served a state", height)
		}
	}
	response := fsc.Query(tendermint.RequestQuery{Data: encode(query)})
	if len(response.Value) == 0 {
		t.Errorf("Failed to serve the last confirmed state")
	}
}

func TestQueryParticipantCount(t *testing.T) {
	fsc := app.NewFlightSuretyChain([]string{"A1"}, dbm.NewMemDB())
	mustDeliver(t, fsc, messages.Transaction{TxType: messages.TxFundAirline, Caller: "A1", Amount: modules.UnitEther})
	fsc.Commit()
	fsc.Commit()
	query := messages.Query{QrType: messages.QueryParticipantCount}
	response := fsc.Query(tendermint.RequestQuery{Data: encode(query)})
	var count int64
	if err := json.Unmarshal(response.Value, &count); err != nil {
		t.Fatalf("Failed to decode count query: %v", err)
	}
	if count != 1 {
		t.Errorf("Failed participant count query, got %d", count)
	}
}
