// Package account holds the persistent account model and the storage port
// the lifecycle flows run against.
//
// A [Store] hands out transactions; everything a single flow reads and
// writes goes through one [Tx] and commits together. Implementations live in
// store/memstore and store/sqlstore.
package account
