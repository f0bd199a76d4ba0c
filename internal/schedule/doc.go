// Package schedule handles when reminders and announcements run.
//
// Cron functions parse and validate cron expressions and compute upcoming
// run times. ParseWhen turns human phrasing like "in 10m" or "at 15:04"
// into a concrete time. RunAt executes a function asynchronously at a
// specified time, and Pump moves due reminders onto the delivery stream.
package schedule
