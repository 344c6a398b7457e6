// Package state provides a typed FSM/session manager for Telegram bots.
// Session data is a single typed record instead of a loose key/value map,
// so incomplete-form bugs surface as compile errors rather than missing keys.
package state
