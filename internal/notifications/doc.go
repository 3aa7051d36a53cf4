// Package notifications sends push notifications about build progress via
// ntfy. When no topic is configured the service degrades to a noop so callers
// never need to branch on whether notifications are enabled.
package notifications
