// Package command parses the text commands typed at the console or read from
// a script, e.g. "PLACE 0,0,NORTH" or "report".
package command
