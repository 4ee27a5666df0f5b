// Package api implements the REST surface for the monitor.
//
// All endpoints live under /api/v1/ and return JSON read from the facility
// status store:
//
//	/api/v1/health          overall state and counts
//	/api/v1/facilities      all live facilities
//	/api/v1/facilities/{id} a single facility
//	/api/v1/risks           every risk row across live facilities
//	/api/v1/capacity        capacity check results per facility
//	/api/v1/alerts          firing and recently resolved alerts
//	/api/v1/snapshot        full dump, same schema the WebSocket hub streams
package api
