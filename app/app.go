package app

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/S35H47/Flight-Surety/crypto"
	"github.com/S35H47/Flight-Surety/messages"
	"github.com/S35H47/Flight-Surety/metrics"
	"github.com/S35H47/Flight-Surety/modules"
	tendermint "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/kv"
	dbm "github.com/tendermint/tm-db"
)

// FlightSuretyChain is the ABCI application around the flight surety state
// machine. Transactions are dispatched to the module transitions, queries
// read a confirmed snapshot, and every commit rotates the snapshot chain
// and persists the committed state.
type FlightSuretyChain struct {
	Height    int64
	Confirmed []*modules.State // written at 2nd commit
	Committed *modules.State   // written at 1st commit
	New       *modules.State   // written at deliverTx
	bus       *modules.Bus
	db        dbm.DB
}

var _ tendermint.Application = (*FlightSuretyChain)(nil)

func NewFlightSuretyChain(genesisAirlines []string, db dbm.DB) *FlightSuretyChain {
	bus := modules.NewBus()
	state := modules.NewState(nil, bus)
	for _, airline := range genesisAirlines {
		_ = state.AddGenesisAirline(airline)
	}
	return &FlightSuretyChain{
		Height: 0,
		New:    state,
		bus:    bus,
		db:     db,
	}
}

// Bus exposes the notification stream consumed by oracle clients and other
// observers.
func (fsc *FlightSuretyChain) Bus() *modules.Bus {
	return fsc.bus
}

func (fsc *FlightSuretyChain) stateAtHeight(height int) *modules.State {
	if len(fsc.Confirmed) == 0 {
		return nil
	}
	switch {
	case height == 0: // current height: last confirmed state
		return fsc.Confirmed[len(fsc.Confirmed)-1]
	case height < 2 || height-2 >= len(fsc.Confirmed): // confirmed states start at height 2
		return nil
	default:
		return fsc.Confirmed[height-2]
	}
}

func (fsc *FlightSuretyChain) Info(requestInfo tendermint.RequestInfo) tendermint.ResponseInfo {
	var lastHash []byte
	if fsc.Committed != nil {
		lastHash = fsc.Committed.Hash()
	}
	return tendermint.ResponseInfo{
		Data:             "Flight surety node",
		Version:          "V1",
		AppVersion:       1,
		LastBlockHeight:  fsc.Height,
		LastBlockAppHash: lastHash,
	}
}

func (fsc *FlightSuretyChain) SetOption(requestSetOption tendermint.RequestSetOption) tendermint.ResponseSetOption {
	return tendermint.ResponseSetOption{}
}

func (fsc *FlightSuretyChain) Query(requestQuery tendermint.RequestQuery) tendermint.ResponseQuery {
	data := make([]byte, base64.StdEncoding.DecodedLen(len(requestQuery.Data)))
	_, _ = base64.StdEncoding.Decode(data, requestQuery.Data)
	data = bytes.Trim(data, "\x00")
	var query messages.Query
	_ = json.Unmarshal(data, &query)
	var value []byte
	state := fsc.stateAtHeight(int(requestQuery.Height))
	if state != nil {
		switch query.QrType {
		case messages.QueryState:
			value, _ = json.Marshal(state)
		case messages.QueryAirline:
			value, _ = json.Marshal(state.Airlines.Registry[query.Identity])
		case messages.QueryVotes:
			value, _ = json.Marshal(state.Airlines.Votes(query.Identity))
		case messages.QueryParticipantCount:
			value, _ = json.Marshal(state.Airlines.ParticipantCount())
		case messages.QueryFlight:
			value, _ = json.Marshal(state.Flights.Get(query.Designator, query.Timestamp))
		case messages.QueryOracleIndexes:
			indexes, err := state.Oracles.Indexes(query.Identity)
			if err == nil {
				value, _ = json.Marshal(indexes)
			}
		case messages.QueryRequest:
			value, _ = json.Marshal(state.Oracles.Request(query.Index, query.Airline, query.Designator, query.Timestamp))
		case messages.QueryPolicy:
			value, _ = json.Marshal(state.Insurance.Policy(query.Passenger, query.Designator, query.Timestamp))
		case messages.QueryPassengerFunds:
			value, _ = json.Marshal(state.Insurance.PassengerFunds(query.Passenger))
		}
	}
	return tendermint.ResponseQuery{
		Code:  uint32(0),
		Index: -1,
		Key:   requestQuery.Data,
		Value: value,
	}
}

// CheckTx authenticates the envelope before it enters the mempool: a well
// formed transaction signed by its caller. The core transitions never see
// a transaction that fails here.
func (fsc *FlightSuretyChain) CheckTx(requestCheckTx tendermint.RequestCheckTx) tendermint.ResponseCheckTx {
	transaction, err := decodeTransaction(requestCheckTx.Tx)
	if err == nil {
		err = transaction.Validate()
	}
	if err != nil {
		return tendermint.ResponseCheckTx{Code: uint32(1), Log: err.Error()}
	}
	caller, err := hex.DecodeString(transaction.Caller)
	if err != nil || !crypto.Verify(caller, transaction.SigningBytes(), transaction.Signature) {
		return tendermint.ResponseCheckTx{Code: uint32(1), Log: "invalid caller signature"}
	}
	return tendermint.ResponseCheckTx{Code: uint32(0)}
}

// InitChain admits the airlines listed in the genesis document, so every
// node starts from the same founding set.
func (fsc *FlightSuretyChain) InitChain(requestInitChain tendermint.RequestInitChain) tendermint.ResponseInitChain {
	var genesis messages.Genesis
	_ = json.Unmarshal(requestInitChain.AppStateBytes, &genesis)
	for _, airline := range genesis.Airlines {
		_ = fsc.New.AddGenesisAirline(airline)
	}
	return tendermint.ResponseInitChain{}
}

func (fsc *FlightSuretyChain) BeginBlock(requestBeginBlock tendermint.RequestBeginBlock) tendermint.ResponseBeginBlock {
	fsc.New.SetSeed(requestBeginBlock.Hash)
	return tendermint.ResponseBeginBlock{}
}

func (fsc *FlightSuretyChain) DeliverTx(requestDeliverTx tendermint.RequestDeliverTx) tendermint.ResponseDeliverTx {
	transaction, err := decodeTransaction(requestDeliverTx.Tx)
	if err == nil {
		err = transaction.Validate()
	}
	if err != nil {
		return tendermint.ResponseDeliverTx{Code: uint32(1), Log: err.Error()}
	}
	metrics.TransactionsTotal.WithLabelValues(string(transaction.TxType)).Inc()

	var attributes map[string]string
	switch transaction.TxType {
	case messages.TxRegisterAirline:
		err = fsc.New.RegisterAirline(transaction.Candidate, transaction.Caller)
		if err == nil {
			metrics.RegisteredAirlines.Set(float64(fsc.New.Airlines.RegisteredCount()))
		}
	case messages.TxFundAirline:
		err = fsc.New.FundAirline(transaction.Caller, transaction.Amount)
	case messages.TxRegisterFlight:
		fsc.New.RegisterFlight(transaction.Designator, transaction.Airline, transaction.Timestamp)
	case messages.TxFetchFlightStatus:
		var index int64
		index, err = fsc.New.FetchFlightStatus(transaction.Caller, transaction.Airline, transaction.Designator, transaction.Timestamp)
		if err == nil {
			attributes = map[string]string{"index": strconv.FormatInt(index, 10)}
		}
	case messages.TxRegisterOracle:
		err = fsc.New.RegisterOracle(transaction.Caller, transaction.Fee)
	case messages.TxSubmitOracleResponse:
		err = fsc.New.SubmitOracleResponse(transaction.Caller, transaction.Index,
			transaction.Airline, transaction.Designator, transaction.Timestamp, transaction.StatusCode)
		if err == nil {
			request := fsc.New.Oracles.Request(transaction.Index, transaction.Airline, transaction.Designator, transaction.Timestamp)
			if request != nil && !request.Open { // this response reached consensus
				metrics.OracleReports.Inc()
			}
		}
	case messages.TxBuyInsurance:
		err = fsc.New.BuyInsurance(transaction.Caller, transaction.Designator, transaction.Timestamp, transaction.Premium)
		if err == nil {
			metrics.PoliciesSold.Inc()
		}
	case messages.TxWithdrawCompensation:
		var credit int64
		credit, err = fsc.New.WithdrawCompensation(transaction.Caller, transaction.Designator, transaction.Timestamp)
		if err == nil {
			metrics.PayoutUnits.Add(float64(credit))
		}
	}
	if err != nil {
		metrics.TransactionErrors.WithLabelValues(string(transaction.TxType)).Inc()
		return tendermint.ResponseDeliverTx{Code: uint32(1), Log: err.Error()}
	}
	return tendermint.ResponseDeliverTx{
		Code:   uint32(0),
		Events: transactionEvents(transaction, attributes),
	}
}

func (fsc *FlightSuretyChain) EndBlock(requestEndBlock tendermint.RequestEndBlock) tendermint.ResponseEndBlock {
	return tendermint.ResponseEndBlock{}
}

func (fsc *FlightSuretyChain) Commit() tendermint.ResponseCommit {
	if fsc.Height > 0 { // we don't append to confirmed in the first commit, since there's no committed state yet
		fsc.Confirmed = append(fsc.Confirmed, fsc.Committed)
	}
	fsc.Committed = fsc.New
	fsc.New = modules.NewState(fsc.Committed, fsc.bus)
	fsc.Height++
	if fsc.db != nil {
		snapshot, _ := json.Marshal(fsc.Committed)
		_ = fsc.db.Set([]byte(strconv.FormatInt(fsc.Height, 10)), snapshot)
	}
	return tendermint.ResponseCommit{
		Data: fsc.Committed.Hash(),
	}
}

func decodeTransaction(raw []byte) (*messages.Transaction, error) {
	tx := make([]byte, base64.StdEncoding.DecodedLen(len(raw)))
	_, _ = base64.StdEncoding.Decode(tx, raw)
	tx = bytes.Trim(tx, "\x00")
	var transaction messages.Transaction
	if err := json.Unmarshal(tx, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func transactionEvents(transaction *messages.Transaction, attributes map[string]string) []tendermint.Event {
	pairs := []kv.Pair{{Key: []byte("caller"), Value: []byte(transaction.Caller)}}
	for key, value := range attributes {
		pairs = append(pairs, kv.Pair{Key: []byte(key), Value: []byte(value)})
	}
	return []tendermint.Event{{
		Type:       string(transaction.TxType),
		Attributes: pairs,
	}}
}
