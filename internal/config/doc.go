// Package config loads the site configuration.
//
// The file is JSON5 (or YAML when the extension is .yaml/.yml). A sibling
// ".local" file, such as community-site.local.json5, is merged on top so a
// checkout can override the API or identity without editing the shared file.
// Anything still unset comes from Default.
package config
