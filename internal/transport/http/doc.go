// Package http exposes the calculation engine over a chi router: synchronous
// calculation, async job submission and polling, a WebSocket progress stream,
// health and Prometheus endpoints.
package http
