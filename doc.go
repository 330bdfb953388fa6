// Package assistant provides top-level documentation for the Vaangigo
// conversational-assistant backend. The module is organized as multiple
// subpackages (e.g. `llm`, `embedding`, `memory`, `knowledge`, `rag`,
// `nlu`, `persona`, `chat`, and `server`).
//
// Importers typically depend on the subpackages directly, for example:
//
//	import (
//	  "github.com/vaangigo/assistant/chat"
//	  "github.com/vaangigo/assistant/llm/groq"
//	  "github.com/vaangigo/assistant/memory/inmemory"
//	)
//
// The root package intentionally keeps a small surface area to avoid
// stuttering and to keep subpackages composable.
package assistant
