// Package store persists blocks, transactions, receipts and chain
// metadata for the sequencer behind a single facade.
//
// Three engines are available: Pebble (log-structured, write heavy),
// LevelDB (embedded) and an in-memory map for tests and throwaway nodes.
// Every engine shares one key schema over a flat byte keyspace:
//
//	B ++ block hash        - finalized block
//	                         data: JSON block
//	H ++ block number      - height index, big endian uint64 (8 bytes)
//	                         data: block hash (32 bytes)
//	P                      - pending block
//	                         data: JSON pending block
//	T ++ tx hash           - transaction, immutable
//	                         data: JSON transaction
//	R ++ tx hash           - transaction receipt, last write wins
//	                         data: JSON receipt
//	M ++ key               - scalar values
//	                         "height" -> big endian uint64 (8 bytes), reserved
//
// Hashes are 32 byte big endian felts.
package store
