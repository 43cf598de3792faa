// Package llm defines the structured-evaluation capability consumed by
// moderation, transcript formatting, and the judge council.
//
// The core never talks to a model API directly: it receives a Provider
// and sends completion requests through it. EvaluateStructured is the
// single entry point the pipeline stages use; it prompts for raw JSON
// and tolerates models that wrap their output in markdown fences.
package llm
