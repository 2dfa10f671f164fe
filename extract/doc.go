// Package extract turns uploaded files and web pages into plain text for the
// upload pipeline.
//
// Only plain text and markdown files are decoded. Web pages are fetched over
// HTTP(S), stripped of navigation, scripts and other page chrome, and rendered
// as lightly formatted text with markdown-style headings and list items.
package extract
