// Package calendar is a thin shim over the Google Calendar API: list,
// create, and delete events. Token lifecycle lives in the auth package.
package calendar
