// Package config loads the monitor configuration from config.yaml.
//
// The `monitor:` section lists the facilities to poll and their upstream
// dashboard endpoints plus the shared source authentication block; the
// `server:` section configures the REST/WebSocket port, API auth, snapshot
// retention, and alert webhooks.
//
// Load(path) applies defaults before unmarshalling, then validates.
// WatchCatalog hot-reloads the facility threshold catalog when its file
// changes; a failed reload keeps the previous catalog.
package config
