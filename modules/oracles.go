package modules

import (
	"crypto/rand"
	"crypto/sha256"
	"sort"
	"strconv"

	ethereum "github.com/ethereum/go-ethereum/crypto"
)

const (
	RegistrationFee    = UnitEther // to register as an oracle
	OracleIndexCount   = 3
	IndexRange         = 10
	ConsensusThreshold = 3   // matching responses that settle a request
	NonceWrap          = 250 // draw nonce wraps back to zero past this
)

// ------------------------------------------------------------------------------------------------------------------- //
// ORACLES

/*
	Oracle coordination. Each registered oracle holds three pairwise-distinct
	indexes in [0,IndexRange). A status fetch opens a request under a key
	derived from a fresh pseudo-random index, so only oracles holding that
	index may respond. Once ConsensusThreshold responses agree on one status
	code the request closes, the flight is settled and a report is emitted.
	A closed request never reopens.

	Index draws hash the current seed, a wrapping nonce and the identity.
	The seed is refreshed from block hash material every block, so draws are
	deterministic given the chain yet unpredictable to callers.
*/
type Oracles struct {
	Registry map[string]*Oracle
	Requests map[string]*Request
	Seed     []byte
	Nonce    int64
	flights  *Flights
	bus      *Bus
}

type Oracle struct {
	Indexes [OracleIndexCount]int64
}

type Request struct {
	Index      int64
	Airline    string
	Designator string
	Timestamp  int64
	Requester  string
	Open       bool
	Responses  map[int64][]string // status code -> reporter identities
}

func NewOracles(old *Oracles, flights *Flights, bus *Bus) *Oracles { // called every new block
	oracles := &Oracles{
		Registry: make(map[string]*Oracle),
		Requests: make(map[string]*Request),
		flights:  flights,
		bus:      bus,
	}
	if old == nil {
		oracles.Seed = make([]byte, 32)
		_, _ = rand.Read(oracles.Seed)
		return oracles
	}
	for identity, oldOracle := range old.Registry {
		oracle := *oldOracle
		oracles.Registry[identity] = &oracle
	}
	for key, oldRequest := range old.Requests {
		request := &Request{
			Index:      oldRequest.Index,
			Airline:    oldRequest.Airline,
			Designator: oldRequest.Designator,
			Timestamp:  oldRequest.Timestamp,
			Requester:  oldRequest.Requester,
			Open:       oldRequest.Open,
			Responses:  make(map[int64][]string),
		}
		for status, reporters := range oldRequest.Responses {
			request.Responses[status] = append([]string(nil), reporters...)
		}
		oracles.Requests[key] = request
	}
	oracles.Seed = append([]byte(nil), old.Seed...)
	oracles.Nonce = old.Nonce
	return oracles
}

func (oracles *Oracles) Hash() []byte {
	var sum []byte
	if oracles == nil {
		return sum
	}
	identities := make([]string, 0, len(oracles.Registry))
	for identity := range oracles.Registry {
		identities = append(identities, identity)
	}
	sort.Strings(identities)
	for _, identity := range identities {
		sum = append(sum, identity...)
		for _, index := range oracles.Registry[identity].Indexes {
			sum = append(sum, strconv.FormatInt(index, 10)...)
		}
	}
	keys := make([]string, 0, len(oracles.Requests))
	for key := range oracles.Requests {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		request := oracles.Requests[key]
		sum = append(sum, key...)
		sum = append(sum, flags(request.Open)...)
		statuses := make([]int64, 0, len(request.Responses))
		for status := range request.Responses {
			statuses = append(statuses, status)
		}
		sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
		for _, status := range statuses {
			sum = append(sum, strconv.FormatInt(status, 10)...)
			sum = append(sum, strconv.Itoa(len(request.Responses[status]))...)
		}
	}
	hash := sha256.Sum256(sum)
	return hash[:]
}

// SetSeed replaces the draw seed with fresh block hash material. Empty
// material keeps the current seed.
func (oracles *Oracles) SetSeed(seed []byte) {
	if len(seed) == 0 {
		return
	}
	oracles.Seed = append([]byte(nil), seed...)
}

func (oracles *Oracles) randomIndex(identity string) int64 {
	sum := append([]byte(nil), oracles.Seed...)
	sum = append(sum, strconv.FormatInt(oracles.Nonce, 10)...)
	sum = append(sum, identity...)
	oracles.Nonce++
	if oracles.Nonce > NonceWrap {
		oracles.Nonce = 0
	}
	hash := ethereum.Keccak256(sum)
	return int64(hash[len(hash)-1]) % IndexRange
}

// generateIndexes draws until each index differs from the ones before it,
// so distinctness holds by construction.
func (oracles *Oracles) generateIndexes(identity string) [OracleIndexCount]int64 {
	var indexes [OracleIndexCount]int64
	indexes[0] = oracles.randomIndex(identity)
	indexes[1] = indexes[0]
	for indexes[1] == indexes[0] {
		indexes[1] = oracles.randomIndex(identity)
	}
	indexes[2] = indexes[1]
	for indexes[2] == indexes[0] || indexes[2] == indexes[1] {
		indexes[2] = oracles.randomIndex(identity)
	}
	return indexes
}

// Register assigns three distinct indexes to the oracle. Registering again
// overwrites the prior assignment.
func (oracles *Oracles) Register(identity string, fee int64) error {
	if fee < RegistrationFee {
		return ErrFeeTooLow
	}
	oracles.Registry[identity] = &Oracle{Indexes: oracles.generateIndexes(identity)}
	return nil
}

func (oracles *Oracles) Indexes(identity string) ([OracleIndexCount]int64, error) {
	oracle := oracles.Registry[identity]
	if oracle == nil {
		return [OracleIndexCount]int64{}, ErrUnauthorized
	}
	return oracle.Indexes, nil
}

// FetchStatus opens a request for independent observations of a flight's
// status. Each fetch draws its own index, so repeated fetches for the same
// flight open independent requests.
func (oracles *Oracles) FetchStatus(requester, airline, designator string, timestamp int64) (int64, error) {
	index := oracles.randomIndex(requester)
	key := RequestKey(index, airline, designator, timestamp)
	oracles.Requests[key] = &Request{
		Index:      index,
		Airline:    airline,
		Designator: designator,
		Timestamp:  timestamp,
		Requester:  requester,
		Open:       true,
		Responses:  make(map[int64][]string),
	}
	oracles.bus.Emit(Event{
		Type: EventOracleRequest,
		Attributes: map[string]string{
			"index":      strconv.FormatInt(index, 10),
			"airline":    airline,
			"designator": designator,
			"timestamp":  strconv.FormatInt(timestamp, 10),
		},
	})
	return index, nil
}

// SubmitResponse appends an observation to an open request. Responses are
// not deduplicated per oracle. The response that brings one status code to
// ConsensusThreshold closes the request and settles the flight; an absent
// request reports the same as a closed one.
func (oracles *Oracles) SubmitResponse(identity string, index int64, airline, designator string, timestamp, statusCode int64) error {
	oracle := oracles.Registry[identity]
	if oracle == nil || !holdsIndex(oracle, index) {
		return ErrInvalidIndex
	}
	key := RequestKey(index, airline, designator, timestamp)
	request := oracles.Requests[key]
	if request == nil || !request.Open {
		return ErrRequestClosed
	}
	request.Responses[statusCode] = append(request.Responses[statusCode], identity)
	if len(request.Responses[statusCode]) >= ConsensusThreshold {
		request.Open = false
		oracles.flights.Settle(airline, designator, timestamp, statusCode)
		oracles.bus.Emit(Event{
			Type: EventOracleReport,
			Attributes: map[string]string{
				"airline":    airline,
				"designator": designator,
				"timestamp":  strconv.FormatInt(timestamp, 10),
				"status":     strconv.FormatInt(statusCode, 10),
			},
		})
	}
	return nil
}

func holdsIndex(oracle *Oracle, index int64) bool {
	for _, assigned := range oracle.Indexes {
		if assigned == index {
			return true
		}
	}
	return false
}

func (oracles *Oracles) Request(index int64, airline, designator string, timestamp int64) *Request {
	return oracles.Requests[RequestKey(index, airline, designator, timestamp)]
}
