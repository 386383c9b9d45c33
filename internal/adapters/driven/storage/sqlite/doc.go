// Package sqlite provides the default local query history store.
//
// The database lives at ~/.caseforest/data/history.db unless a path is
// configured. Schema changes are applied from embedded migrations on open.
package sqlite
