// Package google adapts the Google Gemini API to the taskcore.Adapter
// capability surface (text generation and embeddings).
package google
