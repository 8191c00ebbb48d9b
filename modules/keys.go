package modules

import (
	"encoding/binary"
	"encoding/hex"

	ethereum "github.com/ethereum/go-ethereum/crypto"
)

// Entity identifiers are keccak hashes over the packed fields that define
// the entity, hex encoded for use as map keys. Numbers pack as fixed 8
// bytes and variable-length fields carry a length prefix, so distinct
// field tuples never pack to the same bytes.

func FlightKey(designator string, timestamp int64) string {
	sum := packString(nil, designator)
	sum = packInt(sum, timestamp)
	return hex.EncodeToString(ethereum.Keccak256(sum))
}

func PolicyKey(passenger, designator string, timestamp int64) string {
	sum := packString(nil, passenger)
	sum = packString(sum, designator)
	sum = packInt(sum, timestamp)
	return hex.EncodeToString(ethereum.Keccak256(sum))
}

func RequestKey(index int64, airline, designator string, timestamp int64) string {
	sum := packInt(nil, index)
	sum = packString(sum, airline)
	sum = packString(sum, designator)
	sum = packInt(sum, timestamp)
	return hex.EncodeToString(ethereum.Keccak256(sum))
}

func packString(sum []byte, field string) []byte {
	sum = binary.BigEndian.AppendUint64(sum, uint64(len(field)))
	return append(sum, field...)
}

func packInt(sum []byte, field int64) []byte {
	return binary.BigEndian.AppendUint64(sum, uint64(field))
}
