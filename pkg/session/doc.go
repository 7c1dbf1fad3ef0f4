/*
Package session manages many concurrent play sessions of one story.

Each session id owns a Game whose progress lives under its own storage key,
while save slots are shared. Operations on the same session are serialized
with reference-counted local locks and, optionally, a distributed lock so
several replicas can serve the same sessions.
*/
package session
