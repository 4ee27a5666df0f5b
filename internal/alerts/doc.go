// Package alerts turns risk rows into alert events and delivers them to
// configured webhook targets (Slack, Teams, plain HTTP).
//
// An alert fires when a facility scan produces an active risk row and
// resolves when a later scan of the same facility no longer contains that
// row. A per-row cooldown suppresses re-fires while a condition flaps.
package alerts
