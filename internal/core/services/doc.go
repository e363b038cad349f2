// Package services holds the application use cases behind the driving
// ports: ingest, index, search, answer, status, reset and settings.
// They depend only on driven port interfaces, never on adapters.
package services
