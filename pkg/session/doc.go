/*
Package session implements save-slot management and persistence orchestration.

A Manager serialises access to each save slot with a reference-counted local
lock and, optionally, a distributed lock so several host processes can share
one snapshot store.
*/
package session
