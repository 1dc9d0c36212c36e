package state

import "creatorfund/crypto"

var (
	recordPrefix = []byte("record/")
	metaPrefix   = []byte("meta/")
)

// RecordKey returns the storage key for the record at addr.
func RecordKey(addr crypto.Address) []byte {
	key := make([]byte, 0, len(recordPrefix)+crypto.AddressLength)
	key = append(key, recordPrefix...)
	key = append(key, addr[:]...)
	return key
}

// MetaKey returns the storage key for node-level metadata such as the genesis
// marker.
func MetaKey(name string) []byte {
	key := make([]byte, 0, len(metaPrefix)+len(name))
	key = append(key, metaPrefix...)
	key = append(key, name...)
	return key
}
