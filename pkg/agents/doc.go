// Package agents implements the agent profile store.
//
// A profile is a markdown file <id>.md in the configured directory: YAML
// front matter (name, description, optional model) followed by the body,
// which is the agent's system prompt. The store loads the directory at
// startup, serves lookups from memory, writes saves atomically, and
// reloads itself when a file watcher reports changes.
//
// Hidden files and non-markdown files in the directory are ignored, so
// editor swap files do not show up as agents.
package agents
