// Package openai adapts the OpenAI API to the taskcore.Adapter
// capability surface (text generation and embeddings).
package openai
