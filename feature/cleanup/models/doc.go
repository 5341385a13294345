// Package models defines the persisted records of the cleanup feature.
package models
