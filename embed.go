package soopify

import "embed"

// EmbeddedAssets contains the site script served at /public/app.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
