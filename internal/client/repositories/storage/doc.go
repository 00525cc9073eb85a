// Package storage is the durable key/value store of the client. It plays the
// role browser local storage plays for a web client: the session lives here
// under fixed keys and survives restarts.
package storage
