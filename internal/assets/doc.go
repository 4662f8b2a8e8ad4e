// Package assets provides the CV layout templates and their stylesheets.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in templates compiled into the binary
//	    ├── FilesystemLoader  - custom templates from a directory on disk
//	    └── AssetResolver     - custom first, embedded as fallback
//
// A template set pairs templates/{key}.html with styles/{key}.css. Every
// page also receives styles/base.css, which holds the shared print rules.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   ├── base.css
//	│   └── {key}.css
//	└── templates/
//	    └── {key}.html
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
