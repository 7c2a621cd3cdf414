// Package llm talks to an OpenAI-compatible chat completion backend, such as
// LM Studio, and turns its free-text replies into structured data.
package llm
