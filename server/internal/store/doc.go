// Package store persists the notification state: a flat map from alert key
// to the epoch seconds of the last voice call for that key. Three backends
// share the Store interface: a JSON file (the default), an in-memory map and
// a bbolt database.
package store
