// Package source collects text to speak: the system clipboard, files
// dropped onto the terminal, and files created in a watched inbox
// directory.
package source
