// Package common provides shared utilities used across the serving backend:
// structured logger construction and the process-wide runtime environment value.
package common
