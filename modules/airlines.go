package modules

import (
	"crypto/sha256"
	"sort"
	"strconv"
)

const (
	// Admissions below this many registered airlines need no quorum.
	BootstrapThreshold = 5
)

// ------------------------------------------------------------------------------------------------------------------- //
// AIRLINES

/*
	Airline admission ledger. An airline record is created by its first vote
	or at genesis, becomes registered either during the bootstrap phase or by
	collecting a strict majority of participant votes, and becomes a
	participant once it is both registered and funded. Registration is
	monotonic: once set it is never taken back.
*/
type Airlines struct {
	Registry map[string]*Airline
}

type Airline struct {
	Created    bool
	Registered bool
	Funded     bool
	Voters     map[string]bool
	Funds      int64
}

func NewAirlines(old *Airlines) *Airlines { // called every new block
	airlines := &Airlines{Registry: make(map[string]*Airline)}
	if old == nil {
		return airlines
	}
	for identity, oldAirline := range old.Registry {
		airline := &Airline{
			Created:    oldAirline.Created,
			Registered: oldAirline.Registered,
			Funded:     oldAirline.Funded,
			Voters:     make(map[string]bool),
			Funds:      oldAirline.Funds,
		}
		for voter := range oldAirline.Voters {
			airline.Voters[voter] = true
		}
		airlines.Registry[identity] = airline
	}
	return airlines
}

func (airlines *Airlines) Hash() []byte {
	var sum []byte
	if airlines == nil {
		return sum
	}
	identities := make([]string, 0, len(airlines.Registry))
	for identity := range airlines.Registry {
		identities = append(identities, identity)
	}
	sort.Strings(identities)
	for _, identity := range identities {
		airline := airlines.Registry[identity]
		sum = append(sum, identity...)
		sum = append(sum, flags(airline.Created, airline.Registered, airline.Funded)...)
		sum = append(sum, strconv.Itoa(len(airline.Voters))...)
		sum = append(sum, strconv.FormatInt(airline.Funds, 10)...)
	}
	hash := sha256.Sum256(sum)
	return hash[:]
}

func flags(set ...bool) []byte {
	encoded := make([]byte, len(set))
	for i, flag := range set {
		if flag {
			encoded[i] = '\xFF'
		}
	}
	return encoded
}

// Create seeds an airline record as registered without a vote, for the
// genesis participants the network starts from.
func (airlines *Airlines) Create(identity string) error {
	if airlines.Registry[identity] != nil {
		return ErrAlreadyCreated
	}
	airlines.Registry[identity] = &Airline{
		Created:    true,
		Registered: true,
		Voters:     make(map[string]bool),
	}
	return nil
}

// Register records the caller's vote for the candidate and admits the
// candidate if the admission rule is met: unconditional while fewer than
// BootstrapThreshold airlines are registered, afterwards a strict majority
// over quorum = ceil(participants/2).
func (airlines *Airlines) Register(candidate, caller string) error {
	if !airlines.IsParticipant(caller) {
		return ErrUnauthorized
	}
	airline := airlines.Registry[candidate]
	if airline == nil {
		airline = &Airline{Created: true, Voters: make(map[string]bool)}
		airlines.Registry[candidate] = airline
	}
	if airline.Registered {
		return ErrAlreadyRegistered
	}
	airline.Voters[caller] = true // voting is idempotent per voter
	if airlines.RegisteredCount() < BootstrapThreshold {
		airline.Registered = true
		return nil
	}
	quorum := (airlines.ParticipantCount() + 1) / 2
	if int64(len(airline.Voters)) > quorum {
		airline.Registered = true
	}
	return nil
}

// Fund adds to a registered airline's balance. Funding alone does not make
// a participant: that needs both the registered and funded flags.
func (airlines *Airlines) Fund(identity string, amount int64) error {
	airline := airlines.Registry[identity]
	if airline == nil || !airline.Registered {
		return ErrUnauthorized
	}
	airline.Funds += amount
	if amount > 0 {
		airline.Funded = true
	}
	return nil
}

func (airlines *Airlines) IsCreated(identity string) bool {
	airline := airlines.Registry[identity]
	return airline != nil && airline.Created
}

func (airlines *Airlines) IsRegistered(identity string) bool {
	airline := airlines.Registry[identity]
	return airline != nil && airline.Registered
}

func (airlines *Airlines) IsParticipant(identity string) bool {
	airline := airlines.Registry[identity]
	return airline != nil && airline.Registered && airline.Funded
}

func (airlines *Airlines) Votes(identity string) int64 {
	airline := airlines.Registry[identity]
	if airline == nil {
		return 0
	}
	return int64(len(airline.Voters))
}

func (airlines *Airlines) RegisteredCount() int64 {
	var count int64
	for _, airline := range airlines.Registry {
		if airline.Registered {
			count++
		}
	}
	return count
}

func (airlines *Airlines) ParticipantCount() int64 {
	var count int64
	for _, airline := range airlines.Registry {
		if airline.Registered && airline.Funded {
			count++
		}
	}
	return count
}
