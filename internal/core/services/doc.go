// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - HistoryService: the query history ledger
//   - SearchService: the search, summarise and record pipeline
package services
