// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with LEXRAG_* environment overrides
//   - PromptStore: User-editable prompt templates with embedded defaults
package file
