// Package logger provides structured logging for the adjudication
// pipeline, built on zerolog.
//
// Components obtain a tagged logger via WithComponent and attach
// structured fields with the Fields helper:
//
//	log := logger.NewDefault("debate-judge").WithComponent("council")
//	log.Info("judge completed", logger.Fields("judge", name, "attempt", n))
package logger
