package modules

import (
	"crypto/sha256"
	"sort"
	"strconv"
)

// Flight status codes, as the protocol defines them.
const (
	StatusUnknown       int64 = 0
	StatusOnTime        int64 = 10
	StatusLateAirline   int64 = 20
	StatusLateWeather   int64 = 30
	StatusLateTechnical int64 = 40
	StatusLateOther     int64 = 50
)

// ------------------------------------------------------------------------------------------------------------------- //
// FLIGHTS

/*
	Flight records, keyed by FlightKey(designator, timestamp). A record is
	created with status Unknown and only consensus settlement changes it.
	Registering the same (designator, timestamp) pair again overwrites the
	prior record without any continuity check.
*/
type Flights struct {
	Registry map[string]*Flight
	bus      *Bus
}

type Flight struct {
	Airline    string
	Designator string
	StatusCode int64
	Timestamp  int64
}

func NewFlights(old *Flights, bus *Bus) *Flights { // called every new block
	flights := &Flights{Registry: make(map[string]*Flight), bus: bus}
	if old == nil {
		return flights
	}
	for key, oldFlight := range old.Registry {
		flight := *oldFlight
		flights.Registry[key] = &flight
	}
	return flights
}

func (flights *Flights) Hash() []byte {
	var sum []byte
	if flights == nil {
		return sum
	}
	keys := make([]string, 0, len(flights.Registry))
	for key := range flights.Registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		flight := flights.Registry[key]
		sum = append(sum, key...)
		sum = append(sum, flight.Airline...)
		sum = append(sum, strconv.FormatInt(flight.StatusCode, 10)...)
		sum = append(sum, strconv.FormatInt(flight.Timestamp, 10)...)
	}
	hash := sha256.Sum256(sum)
	return hash[:]
}

func (flights *Flights) Register(designator, airline string, timestamp int64) {
	flights.Registry[FlightKey(designator, timestamp)] = &Flight{
		Airline:    airline,
		Designator: designator,
		StatusCode: StatusUnknown,
		Timestamp:  timestamp,
	}
	flights.bus.Emit(Event{
		Type:       EventFlightRegistered,
		Attributes: map[string]string{"designator": designator},
	})
}

// Settle overwrites a flight's status and timestamp unconditionally. Only
// oracle consensus calls it; a request on a never-registered flight still
// settles into a fresh record.
func (flights *Flights) Settle(airline, designator string, timestamp, statusCode int64) {
	key := FlightKey(designator, timestamp)
	flight := flights.Registry[key]
	if flight == nil {
		flight = &Flight{Airline: airline, Designator: designator}
		flights.Registry[key] = flight
	}
	flight.StatusCode = statusCode
	flight.Timestamp = timestamp
}

func (flights *Flights) Exists(designator string, timestamp int64) bool {
	return flights.Registry[FlightKey(designator, timestamp)] != nil
}

func (flights *Flights) Status(designator string, timestamp int64) int64 {
	flight := flights.Registry[FlightKey(designator, timestamp)]
	if flight == nil {
		return StatusUnknown
	}
	return flight.StatusCode
}

func (flights *Flights) Get(designator string, timestamp int64) *Flight {
	return flights.Registry[FlightKey(designator, timestamp)]
}
