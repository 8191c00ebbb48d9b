package messages

import (
	"encoding/binary"
	"errors"
)

type TransactionType string

const (
	TxRegisterAirline      TransactionType = "TxRegisterAirline"
	TxFundAirline          TransactionType = "TxFundAirline"
	TxRegisterFlight       TransactionType = "TxRegisterFlight"
	TxFetchFlightStatus    TransactionType = "TxFetchFlightStatus"
	TxRegisterOracle       TransactionType = "TxRegisterOracle"
	TxSubmitOracleResponse TransactionType = "TxSubmitOracleResponse"
	TxBuyInsurance         TransactionType = "TxBuyInsurance"
	TxWithdrawCompensation TransactionType = "TxWithdrawCompensation"
)

type Transaction struct {
	TxType TransactionType
	Caller string // hex encoded secp256k1 public key

	Candidate  string
	Airline    string
	Designator string
	Timestamp  int64
	Amount     int64
	Fee        int64
	Premium    int64
	Index      int64
	StatusCode int64

	Signature []byte
}

// SigningBytes is what the caller signs: every field that identifies the
// operation, packed in declaration order. Variable-length fields carry a
// length prefix and numbers pack as fixed 8 bytes, so no two envelopes
// pack to the same bytes.
func (transaction *Transaction) SigningBytes() []byte {
	var sum []byte
	for _, field := range []string{
		string(transaction.TxType),
		transaction.Caller,
		transaction.Candidate,
		transaction.Airline,
		transaction.Designator,
	} {
		sum = binary.BigEndian.AppendUint64(sum, uint64(len(field)))
		sum = append(sum, field...)
	}
	for _, field := range []int64{
		transaction.Timestamp,
		transaction.Amount,
		transaction.Fee,
		transaction.Premium,
		transaction.Index,
		transaction.StatusCode,
	} {
		sum = binary.BigEndian.AppendUint64(sum, uint64(field))
	}
	return sum
}

// Validate rejects transactions the state machine must never see: unknown
// types and amounts the integer ledgers cannot hold. The host currency
// made negative amounts unrepresentable; here the envelope enforces it.
func (transaction *Transaction) Validate() error {
	switch transaction.TxType {
	case TxRegisterAirline, TxFundAirline, TxRegisterFlight, TxFetchFlightStatus,
		TxRegisterOracle, TxSubmitOracleResponse, TxBuyInsurance, TxWithdrawCompensation:
	default:
		return errors.New("unknown transaction type")
	}
	if transaction.Amount < 0 || transaction.Fee < 0 {
		return errors.New("negative amount")
	}
	if transaction.TxType == TxBuyInsurance && transaction.Premium <= 0 {
		return errors.New("premium must be positive")
	}
	return nil
}

type QueryType string

const (
	QueryState            QueryType = "QueryState"
	QueryAirline          QueryType = "QueryAirline"
	QueryVotes            QueryType = "QueryVotes"
	QueryParticipantCount QueryType = "QueryParticipantCount"
	QueryFlight           QueryType = "QueryFlight"
	QueryOracleIndexes    QueryType = "QueryOracleIndexes"
	QueryRequest          QueryType = "QueryRequest"
	QueryPolicy           QueryType = "QueryPolicy"
	QueryPassengerFunds   QueryType = "QueryPassengerFunds"
)

type Query struct {
	QrType     QueryType
	Identity   string
	Airline    string
	Designator string
	Passenger  string
	Timestamp  int64
	Index      int64
}

// Genesis is the app_state section of the genesis document. The airlines
// it lists are admitted before the first block.
type Genesis struct {
	Airlines []string // hex encoded secp256k1 public keys
}
