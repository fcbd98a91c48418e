/*
Package observability provides tools for monitoring the dialogue engine.

It includes Prometheus collectors driven by lifecycle hooks, structured-log
hooks for auditing every event, and a fan-out that lets several hook sets
observe one engine.
*/
package observability
