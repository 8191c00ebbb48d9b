package modules

import "sync"

// Currency constants, in integer smallest units.
const (
	CoinName  = "ETH"
	MinUnit   = "GWEI"
	UnitEther = 1000000000 // smallest units per unit-ether
)

// ------------------------------------------------------------------------------------------------------------------- //
// STATE

/*
	State is the authoritative store the components share. Each component
	exclusively owns its entities; cross-component access goes through held
	pointers (oracles and insurance read flights) and never writes.

	Every public transition runs under one mutex, so a call commits fully
	or fails with no partial effect even when callers overlap. The host
	chain already serializes transactions; the lock keeps the contract when
	the state is driven directly.
*/
type State struct {
	Airlines  *Airlines
	Flights   *Flights
	Oracles   *Oracles
	Insurance *Insurance
	mutex     sync.Mutex
}

func NewState(old *State, bus *Bus) *State { // called every new block
	if old == nil {
		old = &State{}
	}
	flights := NewFlights(old.Flights, bus)
	return &State{
		Airlines:  NewAirlines(old.Airlines),
		Flights:   flights,
		Oracles:   NewOracles(old.Oracles, flights, bus),
		Insurance: NewInsurance(old.Insurance, flights, bus),
	}
}

func (state *State) Hash() []byte {
	sum := append(state.Airlines.Hash(), state.Flights.Hash()...)
	sum = append(sum, state.Oracles.Hash()...)
	return append(sum, state.Insurance.Hash()...)
}

// Airline admission

func (state *State) AddGenesisAirline(identity string) error {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Airlines.Create(identity)
}

func (state *State) RegisterAirline(candidate, caller string) error {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Airlines.Register(candidate, caller)
}

func (state *State) FundAirline(identity string, amount int64) error {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Airlines.Fund(identity, amount)
}

// Flights

func (state *State) RegisterFlight(designator, airline string, timestamp int64) {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	state.Flights.Register(designator, airline, timestamp)
}

// Oracle coordination

func (state *State) RegisterOracle(identity string, fee int64) error {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Oracles.Register(identity, fee)
}

func (state *State) OracleIndexes(identity string) ([OracleIndexCount]int64, error) {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Oracles.Indexes(identity)
}

func (state *State) FetchFlightStatus(requester, airline, designator string, timestamp int64) (int64, error) {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Oracles.FetchStatus(requester, airline, designator, timestamp)
}

func (state *State) SubmitOracleResponse(identity string, index int64, airline, designator string, timestamp, statusCode int64) error {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Oracles.SubmitResponse(identity, index, airline, designator, timestamp, statusCode)
}

func (state *State) SetSeed(seed []byte) {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	state.Oracles.SetSeed(seed)
}

// Insurance

func (state *State) BuyInsurance(passenger, designator string, timestamp, premium int64) error {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Insurance.Buy(passenger, designator, timestamp, premium)
}

func (state *State) WithdrawCompensation(passenger, designator string, timestamp int64) (int64, error) {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	return state.Insurance.Withdraw(passenger, designator, timestamp)
}
